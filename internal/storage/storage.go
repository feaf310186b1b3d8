package storage

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedURL string, err error)
}

type Deleter interface {
	Delete(ctx context.Context, objectName string) error
}

// ObjectStore is the resume file store.
type ObjectStore interface {
	Uploader
	Deleter
}
