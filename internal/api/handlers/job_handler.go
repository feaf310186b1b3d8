package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
)

type JobHandler struct {
	svc services.JobService
}

func NewJobHandler(svc services.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

func (h *JobHandler) List(c *gin.Context) {
	if kw := c.Query("q"); kw != "" {
		rows, err := h.svc.Search(c.Request.Context(), kw)
		reply(c, rows, err)
		return
	}
	rows, err := h.svc.List(c.Request.Context())
	reply(c, rows, err)
}

func (h *JobHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	reply(c, row, err)
}

func (h *JobHandler) Create(c *gin.Context) {
	var in models.Job
	if !bindJSON(c, "JobHandler.Create", &in) {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *JobHandler) Update(c *gin.Context) {
	fields, ok := bindFields(c, "JobHandler.Update")
	if !ok {
		return
	}
	replyEmpty(c, h.svc.Update(c.Request.Context(), c.Param("id"), fields))
}

func (h *JobHandler) Delete(c *gin.Context) {
	replyEmpty(c, h.svc.Delete(c.Request.Context(), c.Param("id")))
}

func (h *JobHandler) Applications(c *gin.Context) {
	rows, err := h.svc.Applications(c.Request.Context(), c.Query("student_id"), c.Query("job_id"))
	reply(c, rows, err)
}

func (h *JobHandler) Application(c *gin.Context) {
	row, err := h.svc.Application(c.Request.Context(), c.Param("id"))
	reply(c, row, err)
}

func (h *JobHandler) Apply(c *gin.Context) {
	var in models.JobApplication
	if !bindJSON(c, "JobHandler.Apply", &in) {
		return
	}
	if id, ok := identity(c); ok && id.Role == models.RoleStudent {
		in.StudentID = id.UserID
	}
	row, err := h.svc.Apply(c.Request.Context(), &in)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

func (h *JobHandler) UpdateApplication(c *gin.Context) {
	fields, ok := bindFields(c, "JobHandler.UpdateApplication")
	if !ok {
		return
	}
	replyEmpty(c, h.svc.UpdateApplication(c.Request.Context(), c.Param("id"), fields))
}
