package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
)

type StudentHandler struct {
	svc services.StudentService
}

func NewStudentHandler(svc services.StudentService) *StudentHandler {
	return &StudentHandler{svc: svc}
}

func (h *StudentHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), c.Query("institution_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *StudentHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *StudentHandler) Create(c *gin.Context) {
	var in models.Student
	if !bindJSON(c, "StudentHandler.Create", &in) {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *StudentHandler) Update(c *gin.Context) {
	fields, ok := bindFields(c, "StudentHandler.Update")
	if !ok {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *StudentHandler) Pending(c *gin.Context) {
	rows, err := h.svc.Pending(c.Request.Context(), c.Param("institution_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *StudentHandler) Approve(c *gin.Context) {
	if err := h.svc.Approve(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *StudentHandler) Reject(c *gin.Context) {
	if err := h.svc.Reject(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

type validateEmailRequest struct {
	Email         string `json:"email" binding:"required"`
	InstitutionID string `json:"institution_id" binding:"required"`
}

func (h *StudentHandler) ValidateEmail(c *gin.Context) {
	var req validateEmailRequest
	if !bindJSON(c, "StudentHandler.ValidateEmail", &req) {
		return
	}
	ok, err := h.svc.ValidateInstitutionEmail(c.Request.Context(), req.Email, req.InstitutionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": ok})
}
