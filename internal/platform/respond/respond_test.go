// Copyright (c) 2026 Vidora. All rights reserved.

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/respond"
)

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body
}

/*
TestOK emits the standard success envelope.
*/
func TestOK(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.OK(recorder, "Fetched successfully", map[string]string{"id": "42"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "application/json")

	body := decodeBody(t, recorder)
	assert.Equal(t, float64(200), body["statusCode"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Fetched successfully", body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42", data["id"])
}

/*
TestError_AppError maps a typed error to its HTTP status and envelope.
*/
func TestError_AppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not_found", apperr.NotFound("User"), http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("Invalid user credentials"), http.StatusUnauthorized},
		{"conflict", apperr.Conflict("Username is already taken"), http.StatusConflict},
		{"rate_limited", apperr.RateLimited(900), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			body := decodeBody(t, recorder)
			assert.Equal(t, float64(tt.wantStatus), body["statusCode"])
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])

			// errors is always present, never null.
			_, ok := body["errors"].([]any)
			assert.True(t, ok)
		})
	}
}

/*
TestError_ValidationDetails carries field errors through the envelope.
*/
func TestError_ValidationDetails(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/", nil)

	respond.Error(recorder, request, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "email", Message: "Must be a valid email address"},
	))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeBody(t, recorder)
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)

	detail := errs[0].(map[string]any)
	assert.Equal(t, "email", detail["field"])
}

/*
TestError_UnknownError hides internals behind a generic 500 envelope.
*/
func TestError_UnknownError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: connection refused at 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body["message"], "10.0.0.3", "internal details must not leak")
}
