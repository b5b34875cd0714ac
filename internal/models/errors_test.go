package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()
	cases := map[string]int{
		CodeNotAuthenticated:   http.StatusUnauthorized,
		CodeValidation:         http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeNotOwner:           http.StatusForbidden,
		CodeModerationRejected: http.StatusUnprocessableEntity,
		CodeUploadFailed:       http.StatusBadGateway,
		CodeInternal:           http.StatusInternalServerError,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, (&AppError{Code: code}).HTTPStatus(), code)
	}
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, AsAppError(nil))

	known := NewNotFoundError("Post", 42)
	assert.Same(t, known, AsAppError(known), "expected failures pass through")

	wrapped := fmt.Errorf("handler: %w", NewValidationError("bad input"))
	assert.Equal(t, CodeValidation, AsAppError(wrapped).Code, "unwraps to the underlying code")

	unknown := AsAppError(errors.New("disk on fire"))
	assert.Equal(t, CodeInternal, unknown.Code)
	assert.ErrorContains(t, unknown, "disk on fire")
}

func TestAppErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not authenticated", NewNotAuthenticatedError().Error())

	withCause := NewUploadFailedError(errors.New("connection reset"))
	assert.Equal(t, "Image upload failed: connection reset", withCause.Error())
	assert.ErrorContains(t, withCause, "connection reset")
}

func respondWith(t *testing.T, err error) (*http.Response, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return RespondWithError(c, err)
	})

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, testErr)
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	var parsed ErrorResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	return resp, parsed
}

func TestRespondWithErrorModerationPayload(t *testing.T) {
	t.Parallel()
	resp, body := respondWith(t, NewModerationRejectedError(
		[]string{"promotes disposable products"},
		[]string{"focus on the reusable alternative"},
	))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, CodeModerationRejected, body.Code)
	assert.Equal(t, []string{"promotes disposable products"}, body.Reasons)
	assert.Equal(t, []string{"focus on the reusable alternative"}, body.Suggestions)
}

func TestRespondWithErrorHidesInternalCause(t *testing.T) {
	t.Parallel()
	resp, body := respondWith(t, errors.New("pq: relation posts does not exist"))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, CodeInternal, body.Code)
	assert.Equal(t, "Unexpected error", body.Error)
	assert.Empty(t, body.Details, "internal causes never leak to clients")
}

func TestRespondWithErrorExposesExpectedCause(t *testing.T) {
	t.Parallel()
	resp, body := respondWith(t, NewUploadFailedError(errors.New("image too large")))

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "image too large", body.Details)
}
