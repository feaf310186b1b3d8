package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
)

type AnalyticsHandler struct {
	svc services.AnalyticsService
}

func NewAnalyticsHandler(svc services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Resumes(c *gin.Context) {
	rows, err := h.svc.ResumeAnalytics(c.Request.Context(), c.Query("student_id"), c.Query("department_id"))
	reply(c, rows, err)
}

func (h *AnalyticsHandler) Interviews(c *gin.Context) {
	rows, err := h.svc.InterviewAnalytics(c.Request.Context(), c.Query("student_id"), c.Query("department_id"))
	reply(c, rows, err)
}

func (h *AnalyticsHandler) ResumeViews(c *gin.Context) {
	rows, err := h.svc.ResumeViews(c.Request.Context(), c.Param("resume_id"))
	reply(c, rows, err)
}

func (h *AnalyticsHandler) RecordResumeView(c *gin.Context) {
	var in models.ResumeView
	if !bindJSON(c, "AnalyticsHandler.RecordResumeView", &in) {
		return
	}
	in.ResumeID = c.Param("resume_id")
	if in.IPAddress == "" {
		in.IPAddress = c.ClientIP()
	}
	row, err := h.svc.RecordResumeView(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *AnalyticsHandler) InstitutionPerformance(c *gin.Context) {
	rows, err := h.svc.InstitutionPerformance(c.Request.Context())
	reply(c, rows, err)
}
