package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
)

type InstitutionHandler struct {
	svc services.InstitutionService
}

func NewInstitutionHandler(svc services.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{svc: svc}
}

func (h *InstitutionHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InstitutionHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *InstitutionHandler) Create(c *gin.Context) {
	var in models.Institution
	if !bindJSON(c, "InstitutionHandler.Create", &in) {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *InstitutionHandler) Update(c *gin.Context) {
	fields, ok := bindFields(c, "InstitutionHandler.Update")
	if !ok {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *InstitutionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}
