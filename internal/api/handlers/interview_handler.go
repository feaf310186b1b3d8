package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

func (h *InterviewHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), c.Query("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InterviewHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *InterviewHandler) Schedule(c *gin.Context) {
	var in models.Interview
	if !bindJSON(c, "InterviewHandler.Schedule", &in) {
		return
	}
	row, err := h.svc.Schedule(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *InterviewHandler) Update(c *gin.Context) {
	fields, ok := bindFields(c, "InterviewHandler.Update")
	if !ok {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *InterviewHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *InterviewHandler) Upcoming(c *gin.Context) {
	rows, err := h.svc.Upcoming(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InterviewHandler) Past(c *gin.Context) {
	rows, err := h.svc.Past(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InterviewHandler) Results(c *gin.Context) {
	rows, err := h.svc.Results(c.Request.Context(), c.Query("student_id"), c.Query("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InterviewHandler) Result(c *gin.Context) {
	row, err := h.svc.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
