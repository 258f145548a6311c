package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillwater/lodge/internal/apperr"
)

func TestFromError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   ErrorBody
	}{
		{
			name:       "validation names the field",
			err:        apperr.Validation("fileName", ""),
			wantStatus: http.StatusBadRequest,
			wantBody:   ErrorBody{Error: "fileName is required", Field: "fileName"},
		},
		{
			name:       "auth",
			err:        apperr.Auth("invalid api key"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   ErrorBody{Error: "invalid api key"},
		},
		{
			name:       "internal hides the cause",
			err:        apperr.Internal("sign url", errors.New("secret endpoint detail")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorBody{Error: "internal server error"},
		},
		{
			name:       "unclassified is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorBody{Error: "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/upload/signed-url", nil)

			FromError(rec, req, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
