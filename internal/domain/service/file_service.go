package service

import (
	"context"
	"io"
)

// FileStorageService stores uploaded files and returns their public URL.
type FileStorageService interface {
	UploadFile(ctx context.Context, file io.Reader, contentType, extension, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}
