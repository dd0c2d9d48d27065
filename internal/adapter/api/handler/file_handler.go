package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
	"servibid/pkg/response"
)

type FileHandler struct {
	uploadUseCase *usecase.UploadUseCase
}

func NewFileHandler(uploadUseCase *usecase.UploadUseCase) *FileHandler {
	return &FileHandler{
		uploadUseCase: uploadUseCase,
	}
}

// UploadFile stores the multipart "file" field. Size and type limits are
// enforced by the use case on the actual bytes.
func (h *FileHandler) UploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	logger.Debug("Received file: %s, size: %d bytes, declared type: %s",
		fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}
	defer file.Close()

	result, err := h.uploadUseCase.Upload(c.Request().Context(), fileHeader.Filename, file)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}
