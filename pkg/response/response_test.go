package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "servibid/pkg/errors"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, apperrors.NotFound("Request", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Request not found", body.Message)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, fmt.Errorf("firestore: connection reset")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "An unexpected error occurred", body.Message)
}

func TestErrorFormatsValidationErrors(t *testing.T) {
	type input struct {
		CustomerID string  `json:"customerId" validate:"required"`
		Budget     float64 `json:"budget" validate:"gt=0"`
	}
	err := validator.New().Struct(input{Budget: 10})
	require.Error(t, err)

	c, rec := newContext()
	require.NoError(t, Error(c, err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "customerID is required", body.Message)
	assert.Equal(t, apperrors.CodeValidation, body.Error.Code)
}

func TestSuccessWithMessage(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, SuccessWithMessage(c, http.StatusOK, "Existing chat found", map[string]string{"id": "c1"}))

	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Existing chat found", body.Message)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestPageInfoEmbedsIntoListing(t *testing.T) {
	type listing struct {
		Items []string `json:"items"`
		PageInfo
	}
	c, rec := newContext()

	require.NoError(t, Success(c, listing{Items: []string{"a"}, PageInfo: NewPageInfo(21, 3, 10)}))

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(21), body.Data["total"])
	assert.Equal(t, float64(3), body.Data["page"])
	assert.Equal(t, float64(10), body.Data["pageSize"])
	assert.Equal(t, float64(3), body.Data["totalPages"])
	assert.Len(t, body.Data["items"], 1)
}
