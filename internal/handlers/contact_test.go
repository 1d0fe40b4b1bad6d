package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

func TestContactSubmit_Validation(t *testing.T) {
	// Validation runs before any repository access, so a nil repo is fine
	// for the rejection paths.
	h := NewContactHandler(nil)

	tests := []struct {
		name string
		body models.ContactRequest
	}{
		{"missing name", models.ContactRequest{Email: "a@b.com", Message: "hi"}},
		{"bad email", models.ContactRequest{Name: "A", Email: "not-an-email", Message: "hi"}},
		{"missing message", models.ContactRequest{Name: "A", Email: "a@b.com"}},
		{"all blank", models.ContactRequest{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, _ := json.Marshal(tc.body)
			req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(data))
			rr := httptest.NewRecorder()

			h.Submit(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp models.ErrorResponse
			json.Unmarshal(rr.Body.Bytes(), &resp)
			if resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("Expected VALIDATION_ERROR, got %q", resp.Error.Code)
			}
			if len(resp.Error.Fields) == 0 {
				t.Error("Expected field-level errors")
			}
		})
	}
}

func TestContactSubmit_InvalidBody(t *testing.T) {
	h := NewContactHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()

	h.Submit(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed JSON, got %d", rr.Code)
	}
}
