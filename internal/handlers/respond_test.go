package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"recipehub/internal/apperrors"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{"authentication", apperrors.ErrAuthentication, http.StatusUnauthorized, "Authentication failed"},
		{"invalid token", apperrors.ErrInvalidToken, http.StatusUnauthorized, "Authentication failed"},
		{"permission", apperrors.ErrPermissionDenied, http.StatusForbidden, "Permission denied"},
		{"cooldown", apperrors.ErrCooldownActive, http.StatusTooManyRequests, apperrors.ErrCooldownActive.Error()},
		{"validation", apperrors.Validation("name", "cannot be empty"), http.StatusBadRequest, "Validation failed"},
		{"already deleted", apperrors.ErrAlreadyDeleted, http.StatusBadRequest, apperrors.ErrAlreadyDeleted.Error()},
		{"referential block", apperrors.ReferentialBlockCount("recipe", 3), http.StatusBadRequest, ""},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondError(c, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body struct {
				Status  string            `json:"status"`
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid envelope: %v", err)
			}
			if body.Status != "error" {
				t.Errorf(`status field = %q, want "error"`, body.Status)
			}
			if tt.wantMsg != "" && body.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMsg)
			}
			if body.Errors["detail"] == "" {
				t.Error("envelope has no detail")
			}
		})
	}
}

func TestRespondErrorMasksInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	detail := body["errors"].(map[string]any)["detail"].(string)
	if detail != "internal server error" {
		t.Errorf("internal detail leaked: %q", detail)
	}
}
