package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solarcheck/internal/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error
}

func TestError_MapsAppErrorStatus(t *testing.T) {
	tests := []struct {
		code types.ErrorCode
		want int
	}{
		{types.ErrCodeValidationPanelCountRange, http.StatusBadRequest},
		{types.ErrCodeNotFoundSession, http.StatusNotFound},
		{types.ErrCodeConflictSessionTransition, http.StatusConflict},
		{types.ErrCodeUpstreamUnavailable, http.StatusBadGateway},
		{types.ErrCodeUpstreamRateLimited, http.StatusServiceUnavailable},
		{types.ErrCodeInternalUnexpected, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(types.WithRequestID(req.Context(), "req-1"))
			rec := httptest.NewRecorder()

			wrapped := fmt.Errorf("handler: %w", types.NewAppErrorWithDetails(tt.code, "msg", nil, map[string]any{"k": "v"}))
			Error(rec, req, wrapped)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			detail := decodeError(t, rec)
			if detail.Code != string(tt.code) || detail.RequestID != "req-1" || detail.Details["k"] != "v" {
				t.Errorf("detail = %+v", detail)
			}
		})
	}
}

func TestError_HidesPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("db password is hunter2"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("internal error text leaked to client")
	}
	if decodeError(t, rec).Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("unexpected code in %s", rec.Body.String())
	}
}

func TestJSON_UnmarshalableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]any{"f": func() {}})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

type decodeTarget struct {
	PanelCount int `json:"panel_count"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"panel_count": 4}`, false},
		{"malformed", `{"panel_count":`, true},
		{"wrong type", `{"panel_count": "four"}`, true},
		{"unknown field", `{"panels": 4}`, true},
		{"trailing object", `{"panel_count": 4}{"panel_count": 5}`, true},
		{"empty", ``, true},
		{"too large", `{"panel_count": 4, "x": "` + strings.Repeat("a", maxRequestBodySize) + `"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst decodeTarget
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("DecodeJSON() = %v", err)
				}
				if dst.PanelCount != 4 {
					t.Errorf("PanelCount = %d, want 4", dst.PanelCount)
				}
				return
			}
			var appErr *types.AppError
			if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationInvalidJSON {
				t.Errorf("DecodeJSON() = %v, want %s", err, types.ErrCodeValidationInvalidJSON)
			}
		})
	}
}

func TestDecodeOptionalJSON_EmptyBody(t *testing.T) {
	dst := decodeTarget{PanelCount: 7}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := DecodeOptionalJSON(httptest.NewRecorder(), req, &dst); err != nil {
		t.Fatalf("DecodeOptionalJSON() = %v", err)
	}
	if dst.PanelCount != 7 {
		t.Error("empty body should leave target untouched")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	if err := DecodeOptionalJSON(httptest.NewRecorder(), req, &dst); err == nil {
		t.Error("a present but invalid body must still fail")
	}
}
