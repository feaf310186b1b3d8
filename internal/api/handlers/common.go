package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	_ = c.Error(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

// identity returns what the auth middleware stored. ok is false when the
// request carries no identity (auth disabled or anonymous).
func identity(c *gin.Context) (models.Identity, bool) {
	var id models.Identity
	if v, ok := c.Get("user_id"); ok {
		id.UserID, _ = v.(string)
	}
	if v, ok := c.Get("role"); ok {
		s, _ := v.(string)
		id.Role = models.UserRole(s)
	}
	if v, ok := c.Get("institution_id"); ok {
		id.InstitutionID, _ = v.(string)
	}
	return id, id.UserID != ""
}

func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return false
	}
	return true
}

// bindFields reads a partial update body.
func bindFields(c *gin.Context, op string) (map[string]any, bool) {
	var fields map[string]any
	if !bindJSON(c, op, &fields) {
		return nil, false
	}
	return fields, true
}

func queryInt(c *gin.Context, key string, fallback, ceiling int) int {
	if s := c.Query(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= ceiling {
			return n
		}
	}
	return fallback
}

func created(c *gin.Context, v any) { c.JSON(http.StatusCreated, v) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }

func reply(c *gin.Context, v any, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func replyEmpty(c *gin.Context, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}
