package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/concurrency"
	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
	"github.com/octavia-ai/octavia/internal/utils"
)

type ReportHandler struct {
	svc services.ReportService
}

func NewReportHandler(svc services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Generate serves GET /generateInterviewReport?interviewId=.
func (h *ReportHandler) Generate(c *gin.Context) {
	rep, err := h.svc.Generate(c.Request.Context(), c.Query("interviewId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

type ConcurrencyHandler struct {
	advisor *concurrency.Advisor
	samples concurrency.SampleReader
	now     func() time.Time
}

func NewConcurrencyHandler(advisor *concurrency.Advisor, samples concurrency.SampleReader) *ConcurrencyHandler {
	return &ConcurrencyHandler{advisor: advisor, samples: samples, now: time.Now}
}

// Usage serves GET /vapiConcurrencyUsage. refresh=true bypasses the cached
// snapshot.
func (h *ConcurrencyHandler) Usage(c *gin.Context) {
	get := h.advisor.Current
	if c.Query("refresh") == "true" {
		get = h.advisor.Refresh
	}
	snap, err := get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// History serves GET /vapiConcurrencyUsage/history?days=N, the persisted
// refresh samples of the last N days (default 7, at most 30).
func (h *ConcurrencyHandler) History(c *gin.Context) {
	const op = "ConcurrencyHandler.History"
	if h.samples == nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "sample history is not configured", nil))
		return
	}
	days := queryInt(c, "days", 7, 30)
	rows, err := h.samples.Since(c.Request.Context(), h.now().Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		writeError(c, utils.E(utils.CodePersistence, op, "failed to read concurrency samples", err))
		return
	}
	if rows == nil {
		rows = []models.ConcurrencySample{}
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "samples": rows})
}
