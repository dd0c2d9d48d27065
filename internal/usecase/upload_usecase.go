package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"servibid/internal/domain/service"
	"servibid/pkg/errors"
)

const uploadFolder = "uploads"

var uploadKinds = []string{"image/", "audio/", "video/"}

type UploadUseCase struct {
	storage  service.FileStorageService
	maxBytes int64
}

func NewUploadUseCase(storage service.FileStorageService, maxBytes int64) *UploadUseCase {
	return &UploadUseCase{storage: storage, maxBytes: maxBytes}
}

type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// Upload stores a media file after sniffing its content type. The declared
// type from the client is ignored.
func (uc *UploadUseCase) Upload(ctx context.Context, fileName string, file io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(file, uc.maxBytes+1))
	if err != nil {
		return nil, errors.BadRequest("Failed to read file", err)
	}
	if len(data) == 0 {
		return nil, errors.Validation("file is empty")
	}
	if int64(len(data)) > uc.maxBytes {
		return nil, errors.Validation(fmt.Sprintf("file exceeds %d bytes", uc.maxBytes))
	}

	detected := mimetype.Detect(data)
	contentType := strings.SplitN(detected.String(), ";", 2)[0]
	if !allowedUpload(contentType) {
		return nil, errors.Validation(fmt.Sprintf("unsupported file type %s", contentType))
	}

	url, err := uc.storage.UploadFile(ctx, bytes.NewReader(data), contentType, detected.Extension(), uploadFolder)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		FileURL:  url,
		FileName: fileName,
		FileType: contentType,
		FileSize: int64(len(data)),
	}, nil
}

func allowedUpload(contentType string) bool {
	for _, kind := range uploadKinds {
		if strings.HasPrefix(contentType, kind) {
			return true
		}
	}
	return false
}
