package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/repository"
)

type ContactHandler struct {
	contactRepo *repository.ContactRepo
}

func NewContactHandler(contactRepo *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

var contactEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}
	if !contactEmailRegex.MatchString(req.Email) {
		fields["email"] = "Valid email is required"
	}
	if strings.TrimSpace(req.Message) == "" {
		fields["message"] = "Message is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	if err := h.contactRepo.Create(r.Context(), msg); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to submit message", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Thanks for reaching out. We'll get back to you soon.",
		"id":      msg.ID,
	})
}
