package phone

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFormatHandler(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/format-phone", strings.NewReader(`{"phone":"1-480-555-1234"}`))
	rec := httptest.NewRecorder()
	h.Format(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Formatted  string `json:"formatted"`
		Normalized string `json:"normalized"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Normalized != "4805551234" {
		t.Errorf("normalized = %q, want %q", resp.Normalized, "4805551234")
	}
	if resp.Formatted != "(480) 555-1234" {
		t.Errorf("formatted = %q, want %q", resp.Formatted, "(480) 555-1234")
	}
}

func TestFormatHandlerShortNumberStillOK(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/format-phone", strings.NewReader(`{"phone":"555-01-23"}`))
	rec := httptest.NewRecorder()
	h.Format(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Formatted  string `json:"formatted"`
		Normalized string `json:"normalized"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Formatted != "555-01-23" {
		t.Errorf("formatted = %q, want verbatim input", resp.Formatted)
	}
	if resp.Normalized != "5550123" {
		t.Errorf("normalized = %q, want %q", resp.Normalized, "5550123")
	}
}

func TestFormatHandlerRejectsMissingPhone(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/format-phone", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Format(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFormatHandlerRejectsBadJSON(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/format-phone", strings.NewReader(`{"phone":`))
	rec := httptest.NewRecorder()
	h.Format(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
