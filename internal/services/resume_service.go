package services

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/storage"
	"github.com/octavia-ai/octavia/internal/utils"
)

type ResumeUpload struct {
	StudentID string
	FileName  string
	FileSize  int64
	MimeType  string
	Body      io.Reader
}

type ResumeService interface {
	List(ctx context.Context, studentID string) ([]models.Resume, error)
	Get(ctx context.Context, id string) (*models.Resume, error)
	Upload(ctx context.Context, in ResumeUpload) (*models.Resume, error)
	UpdateData(ctx context.Context, id, resumeData string) error
	Delete(ctx context.Context, id string) error
	Latest(ctx context.Context, studentID string) (*models.Resume, error)
}

type resumeService struct {
	resumes  mongorepo.RecordStore[models.Resume]
	students mongorepo.RecordStore[models.Student]
	files    storage.ObjectStore
	log      *logrus.Logger
}

func NewResumeService(resumes mongorepo.RecordStore[models.Resume], students mongorepo.RecordStore[models.Student], files storage.ObjectStore, log *logrus.Logger) ResumeService {
	if log == nil {
		log = logrus.New()
	}
	return &resumeService{resumes: resumes, students: students, files: files, log: log}
}

func (s *resumeService) List(ctx context.Context, studentID string) ([]models.Resume, error) {
	filter := mongorepo.Filter{}
	if studentID != "" {
		filter["student_id"] = studentID
	}
	rows, err := s.resumes.List(ctx, filter, mongorepo.ListOptions{SortBy: "upload_date", Desc: true})
	if err != nil {
		return nil, readErr("ResumeService.List", "resumes", err)
	}
	return rows, nil
}

func (s *resumeService) Get(ctx context.Context, id string) (*models.Resume, error) {
	const op = "ResumeService.Get"

	if err := requireID(op, "resume_id", id); err != nil {
		return nil, err
	}
	r, err := s.resumes.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "resume", err)
	}
	return r, nil
}

// Upload stores the file, records the resume and flags the student as having
// uploaded one. Parsed resume_data is filled in later through UpdateData.
func (s *resumeService) Upload(ctx context.Context, in ResumeUpload) (*models.Resume, error) {
	const op = "ResumeService.Upload"

	if in.StudentID == "" || in.Body == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "student_id and file are required", nil)
	}
	if s.files == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "file storage is not configured", nil)
	}

	objectName := "resumes/" + in.StudentID + "/" + uuid.NewString() + "-" + safeFileName(in.FileName)
	url, err := s.files.Upload(ctx, objectName, in.MimeType, in.Body)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	row := &models.Resume{
		StudentID:  in.StudentID,
		UploadDate: timeNow(),
		FileURL:    url,
		FileName:   in.FileName,
		FileSize:   in.FileSize,
		MimeType:   in.MimeType,
		ObjectName: objectName,
	}
	if _, err := s.resumes.Create(ctx, row); err != nil {
		if derr := s.files.Delete(ctx, objectName); derr != nil {
			s.log.WithError(derr).WithField("object", objectName).Warn("failed to remove orphaned upload")
		}
		return nil, writeErr(op, "resume", err)
	}

	if err := s.students.Update(ctx, in.StudentID, mongorepo.Fields{"resume_uploaded": true}); err != nil {
		s.log.WithError(err).WithField("student_id", in.StudentID).Warn("failed to flag resume upload")
	}
	return row, nil
}

func (s *resumeService) UpdateData(ctx context.Context, id, resumeData string) error {
	const op = "ResumeService.UpdateData"

	if err := requireID(op, "resume_id", id); err != nil {
		return err
	}
	if err := s.resumes.Update(ctx, id, mongorepo.Fields{"resume_data": resumeData}); err != nil {
		return writeErr(op, "resume", err)
	}
	return nil
}

func (s *resumeService) Delete(ctx context.Context, id string) error {
	const op = "ResumeService.Delete"

	if err := requireID(op, "resume_id", id); err != nil {
		return err
	}
	r, err := s.resumes.Get(ctx, id)
	if err != nil {
		return readErr(op, "resume", err)
	}
	if err := s.resumes.Delete(ctx, id); err != nil {
		return writeErr(op, "resume", err)
	}
	if r.ObjectName != "" && s.files != nil {
		if err := s.files.Delete(ctx, r.ObjectName); err != nil {
			s.log.WithError(err).WithField("object", r.ObjectName).Warn("failed to remove resume file")
		}
	}
	return nil
}

func (s *resumeService) Latest(ctx context.Context, studentID string) (*models.Resume, error) {
	const op = "ResumeService.Latest"

	if err := requireID(op, "student_id", studentID); err != nil {
		return nil, err
	}
	rows, err := s.resumes.List(ctx, mongorepo.Filter{"student_id": studentID}, mongorepo.ListOptions{SortBy: "upload_date", Desc: true, Limit: 1})
	if err != nil {
		return nil, readErr(op, "resumes", err)
	}
	if len(rows) == 0 {
		return nil, utils.E(utils.CodeNotFound, op, "student has no resume", utils.ErrNotFound)
	}
	return &rows[0], nil
}

func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "resume"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
