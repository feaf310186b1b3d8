package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
)

type MessageHandler struct {
	svc services.MessageService
}

func NewMessageHandler(svc services.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), c.Query("target"))
	reply(c, rows, err)
}

func (h *MessageHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	reply(c, row, err)
}

func (h *MessageHandler) Create(c *gin.Context) {
	var in models.Message
	if !bindJSON(c, "MessageHandler.Create", &in) {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *MessageHandler) Update(c *gin.Context) {
	fields, ok := bindFields(c, "MessageHandler.Update")
	if !ok {
		return
	}
	replyEmpty(c, h.svc.Update(c.Request.Context(), c.Param("id"), fields))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	replyEmpty(c, h.svc.Delete(c.Request.Context(), c.Param("id")))
}

type broadcastRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	InstitutionID string   `json:"institution_id"`
	StudentIDs    []string `json:"student_ids"`
}

// Send broadcasts to an institution, or targets student_ids when given.
func (h *MessageHandler) Send(c *gin.Context) {
	var req broadcastRequest
	if !bindJSON(c, "MessageHandler.Send", &req) {
		return
	}
	if len(req.StudentIDs) > 0 {
		ids, err := h.svc.SendTargeted(c.Request.Context(), req.Title, req.Content, req.StudentIDs)
		if err != nil {
			writeError(c, err)
			return
		}
		created(c, gin.H{"message_ids": ids})
		return
	}
	m, err := h.svc.Broadcast(c.Request.Context(), req.Title, req.Content, req.InstitutionID)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, m)
}

func (h *MessageHandler) Inquiries(c *gin.Context) {
	rows, err := h.svc.Inquiries(c.Request.Context())
	reply(c, rows, err)
}

func (h *MessageHandler) Inquiry(c *gin.Context) {
	row, err := h.svc.Inquiry(c.Request.Context(), c.Param("id"))
	reply(c, row, err)
}

func (h *MessageHandler) SubmitInquiry(c *gin.Context) {
	var in models.ContactInquiry
	if !bindJSON(c, "MessageHandler.SubmitInquiry", &in) {
		return
	}
	row, err := h.svc.SubmitInquiry(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *MessageHandler) UpdateInquiry(c *gin.Context) {
	fields, ok := bindFields(c, "MessageHandler.UpdateInquiry")
	if !ok {
		return
	}
	replyEmpty(c, h.svc.UpdateInquiry(c.Request.Context(), c.Param("id"), fields))
}

func (h *MessageHandler) DeleteInquiry(c *gin.Context) {
	replyEmpty(c, h.svc.DeleteInquiry(c.Request.Context(), c.Param("id")))
}
