package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/logger"
	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

type memFiles struct {
	objects   map[string][]byte
	uploadErr error
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (m *memFiles) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.objects[name] = b
	return "https://files.test/" + name, nil
}

func (m *memFiles) Delete(_ context.Context, name string) error {
	delete(m.objects, name)
	return nil
}

func TestResumeUploadAndDelete(t *testing.T) {
	resumes := newMemStore[models.Resume]()
	students := newMemStore[models.Student]()
	sid := students.put(models.Student{FullName: "Ada"})
	files := newMemFiles()
	svc := NewResumeService(resumes, students, files, logger.Discard())
	ctx := context.Background()

	r, err := svc.Upload(ctx, ResumeUpload{
		StudentID: sid,
		FileName:  "../My CV (final).pdf",
		FileSize:  3,
		MimeType:  "application/pdf",
		Body:      bytes.NewReader([]byte("pdf")),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.ObjectName, "resumes/"+sid+"/"))
	assert.True(t, strings.HasSuffix(r.ObjectName, "-My_CV__final_.pdf"))
	assert.Equal(t, "https://files.test/"+r.ObjectName, r.FileURL)
	assert.Len(t, files.objects, 1)

	st, err := students.Get(ctx, sid)
	require.NoError(t, err)
	assert.True(t, st.ResumeUploaded)

	require.NoError(t, svc.Delete(ctx, r.ID))
	assert.Empty(t, files.objects)
	assert.Equal(t, 0, resumes.count())

	err = svc.Delete(ctx, r.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestResumeUploadFailures(t *testing.T) {
	ctx := context.Background()
	body := func() io.Reader { return strings.NewReader("x") }

	svc := NewResumeService(newMemStore[models.Resume](), newMemStore[models.Student](), nil, logger.Discard())
	_, err := svc.Upload(ctx, ResumeUpload{StudentID: "s1", Body: body()})
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))

	files := newMemFiles()
	files.uploadErr = errors.New("quota")
	svc = NewResumeService(newMemStore[models.Resume](), newMemStore[models.Student](), files, logger.Discard())
	_, err = svc.Upload(ctx, ResumeUpload{StudentID: "s1", Body: body()})
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))

	_, err = svc.Upload(ctx, ResumeUpload{Body: body()})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	resumes := newMemStore[models.Resume]()
	resumes.failErr = errors.New("mongo down")
	files = newMemFiles()
	svc = NewResumeService(resumes, newMemStore[models.Student](), files, logger.Discard())
	_, err = svc.Upload(ctx, ResumeUpload{StudentID: "s1", Body: body()})
	assert.True(t, utils.IsCode(err, utils.CodePersistence))
	assert.Empty(t, files.objects)
}

func TestLatestResume(t *testing.T) {
	resumes := newMemStore[models.Resume]()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	resumes.put(models.Resume{StudentID: "s1", FileName: "old.pdf", UploadDate: base})
	resumes.put(models.Resume{StudentID: "s1", FileName: "new.pdf", UploadDate: base.Add(48 * time.Hour)})
	svc := NewResumeService(resumes, newMemStore[models.Student](), newMemFiles(), logger.Discard())

	r, err := svc.Latest(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "new.pdf", r.FileName)

	_, err = svc.Latest(context.Background(), "s2")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
