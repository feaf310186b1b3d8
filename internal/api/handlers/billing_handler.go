package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
	"github.com/octavia-ai/octavia/internal/utils"
)

type BillingHandler struct {
	svc services.BillingService
}

func NewBillingHandler(svc services.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

func (h *BillingHandler) PaymentMethods(c *gin.Context) {
	rows, err := h.svc.PaymentMethods(c.Request.Context(), c.Param("institution_id"))
	reply(c, rows, err)
}

func (h *BillingHandler) PaymentMethod(c *gin.Context) {
	row, err := h.svc.PaymentMethod(c.Request.Context(), c.Param("id"))
	reply(c, row, err)
}

func (h *BillingHandler) AddPaymentMethod(c *gin.Context) {
	var in models.PaymentMethod
	if !bindJSON(c, "BillingHandler.AddPaymentMethod", &in) {
		return
	}
	row, err := h.svc.AddPaymentMethod(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *BillingHandler) UpdatePaymentMethod(c *gin.Context) {
	fields, ok := bindFields(c, "BillingHandler.UpdatePaymentMethod")
	if !ok {
		return
	}
	replyEmpty(c, h.svc.UpdatePaymentMethod(c.Request.Context(), c.Param("id"), fields))
}

func (h *BillingHandler) DeletePaymentMethod(c *gin.Context) {
	replyEmpty(c, h.svc.DeletePaymentMethod(c.Request.Context(), c.Param("id")))
}

func (h *BillingHandler) SetDefault(c *gin.Context) {
	replyEmpty(c, h.svc.SetDefaultPaymentMethod(c.Request.Context(), c.Param("institution_id"), c.Param("id")))
}

func (h *BillingHandler) History(c *gin.Context) {
	rows, err := h.svc.History(c.Request.Context(), c.Param("institution_id"))
	reply(c, rows, err)
}

func (h *BillingHandler) Record(c *gin.Context) {
	row, err := h.svc.Record(c.Request.Context(), c.Param("id"))
	reply(c, row, err)
}

func (h *BillingHandler) AddRecord(c *gin.Context) {
	var in models.BillingRecord
	if !bindJSON(c, "BillingHandler.AddRecord", &in) {
		return
	}
	row, err := h.svc.AddRecord(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *BillingHandler) UpdateRecord(c *gin.Context) {
	fields, ok := bindFields(c, "BillingHandler.UpdateRecord")
	if !ok {
		return
	}
	replyEmpty(c, h.svc.UpdateRecord(c.Request.Context(), c.Param("id"), fields))
}

// Total sums billing between from and to (YYYY-MM-DD, inclusive days).
func (h *BillingHandler) Total(c *gin.Context) {
	const op = "BillingHandler.Total"

	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "from must be YYYY-MM-DD", err))
		return
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "to must be YYYY-MM-DD", err))
		return
	}
	// include the whole last day
	to = to.Add(24*time.Hour - time.Nanosecond)

	total, err := h.svc.Total(c.Request.Context(), c.Param("institution_id"), from, to)
	reply(c, gin.H{"institution_id": c.Param("institution_id"), "total": total}, err)
}
