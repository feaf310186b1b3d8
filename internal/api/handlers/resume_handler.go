package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
	"github.com/octavia-ai/octavia/internal/utils"
)

// sniffed content type -> accepted extensions and stored mime type
var resumeTypes = map[string]struct {
	exts []string
	mime string
}{
	"application/pdf": {exts: []string{".pdf"}, mime: "application/pdf"},
	"application/zip": {exts: []string{".docx"}, mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

type ResumeHandler struct {
	svc      services.ResumeService
	maxBytes int64
}

func NewResumeHandler(svc services.ResumeService, maxMB int64) *ResumeHandler {
	if maxMB <= 0 {
		maxMB = 10
	}
	return &ResumeHandler{svc: svc, maxBytes: maxMB << 20}
}

func (h *ResumeHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), c.Query("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ResumeHandler) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ResumeHandler) Latest(c *gin.Context) {
	row, err := h.svc.Latest(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ResumeHandler) Upload(c *gin.Context) {
	const op = "ResumeHandler.Upload"

	studentID := c.PostForm("student_id")
	if id, ok := identity(c); ok && id.Role == models.RoleStudent {
		studentID = id.UserID
	}
	if studentID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "student_id is required", nil))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if fh.Size <= 0 || fh.Size > h.maxBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file is empty or too large", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff the first 512 bytes, then stitch them back in front of the rest
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]

	kind, ok := resumeTypes[http.DetectContentType(head)]
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !ok || !contains(kind.exts, ext) {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "only .pdf or .docx resumes are accepted", nil))
		return
	}

	row, err := h.svc.Upload(c.Request.Context(), services.ResumeUpload{
		StudentID: studentID,
		FileName:  fh.Filename,
		FileSize:  fh.Size,
		MimeType:  kind.mime,
		Body:      io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, row)
}

type resumeDataRequest struct {
	ResumeData string `json:"resume_data" binding:"required"`
}

func (h *ResumeHandler) UpdateData(c *gin.Context) {
	var req resumeDataRequest
	if !bindJSON(c, "ResumeHandler.UpdateData", &req) {
		return
	}
	if err := h.svc.UpdateData(c.Request.Context(), c.Param("id"), req.ResumeData); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func (h *ResumeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	noContent(c)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
