package response

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "servibid/pkg/errors"
	"servibid/pkg/logger"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PageInfo is embedded in listing payloads so the page fields sit next to
// the listed items.
type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func NewPageInfo(total int64, page, pageSize int) PageInfo {
	return PageInfo{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

// SuccessWithMessage is used where the caller needs a human-readable outcome
// alongside the payload, for example "Existing chat found".
func SuccessWithMessage(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Request().Method, c.Path(), appErr)
		}
		return fail(c, appErr.Status, appErr.Code, appErr.Message)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return fail(c, httpErr.Code, strings.ToUpper(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_")), message)
	}

	logger.Error("%s %s: unexpected error: %v", c.Request().Method, c.Path(), err)
	return fail(c, http.StatusInternalServerError, apperrors.CodeInternal, "An unexpected error occurred")
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Response{
		Success:   false,
		Message:   message,
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	for _, err := range validationErr {
		field := err.Field()
		if len(field) > 0 {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		param := err.Param()

		var message string
		switch err.Tag() {
		case "required":
			message = field + " is required"
		case "gt":
			message = field + " must be greater than " + param
		case "min":
			message = field + " must be at least " + param
		case "max":
			message = field + " must be at most " + param
		case "oneof":
			message = field + " must be one of: " + param
		case "email":
			message = field + " must be a valid email address"
		case "url":
			message = field + " must be a valid URL"
		default:
			message = field + " is invalid"
		}

		return fail(c, http.StatusBadRequest, apperrors.CodeValidation, message)
	}

	return fail(c, http.StatusBadRequest, apperrors.CodeValidation, "Invalid input data")
}
