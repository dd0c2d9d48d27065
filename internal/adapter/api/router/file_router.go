package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupFileRouter(e *echo.Echo) {
	e.POST("/upload", handler.GetFileHandler().UploadFile)
}
