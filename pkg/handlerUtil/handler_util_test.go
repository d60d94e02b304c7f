package handlerUtil

import (
	"BodyMeasure/pkg/response"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_Handle(t *testing.T) {
	errBadUpload := response.NewError(http.StatusBadRequest, "No selected file")
	errNoPerson := response.NewError(http.StatusInternalServerError, "No person detected in the image")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "client error",
			err:        errBadUpload,
			wantStatus: http.StatusBadRequest,
			wantBody:   "No selected file",
		},
		{
			name:       "wrapped server error keeps its own message",
			err:        fmt.Errorf("%w: no pose detected", errNoPerson),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "No person detected in the image",
		},
		{
			name:       "plain error",
			err:        errors.New("pose detection failed: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "pose detection failed: connection refused",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("error reading pose reply: %w", context.DeadlineExceeded),
			wantStatus: http.StatusRequestTimeout,
			wantBody:   "Request Timeout",
		},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tc.err, c.Path(), "test")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.wantBody, body.Error)
		})
	}
}

func TestErrorHandler_ResolveTagsServerErrorsWithTraceID(t *testing.T) {
	errNoPerson := response.NewError(http.StatusInternalServerError, "No person detected in the image")
	errBadUpload := response.NewError(http.StatusBadRequest, "No selected file")

	tests := []struct {
		name      string
		requestID string
		err       error
		wantLevel logrus.Level
		wantTrace bool
	}{
		{name: "server error response", requestID: "req-1", err: errNoPerson, wantLevel: logrus.ErrorLevel, wantTrace: true},
		{name: "unexpected error", requestID: "req-2", err: errors.New("connection refused"), wantLevel: logrus.ErrorLevel, wantTrace: true},
		{name: "client error", requestID: "req-3", err: errBadUpload, wantLevel: logrus.WarnLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()

			New(logger).Resolve(tc.requestID, tc.err, "/measure", "measure")

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tc.wantLevel, entry.Level)
			if tc.wantTrace {
				assert.Equal(t, tc.requestID, entry.Data["trace_id"])
			} else {
				assert.NotContains(t, entry.Data, "trace_id")
			}
		})
	}
}

func TestErrorHandler_ResolveMintsTraceIDWithoutRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()

	status := New(logger).Resolve("unknown", errors.New("connection refused"), "/measure/ws", "measure_frame")
	assert.Equal(t, http.StatusInternalServerError, status)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	traceID, ok := entry.Data["trace_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err)
}
