package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

// verseSource reads verses from the document store.
type verseSource interface {
	ListVerses(ctx context.Context) ([]models.Verse, error)
	SearchVerses(ctx context.Context, query string, limit int) ([]models.Verse, error)
}

const searchLimit = 20

type VersesHandler struct {
	verses verseSource
}

func NewVersesHandler(verses verseSource) *VersesHandler {
	return &VersesHandler{verses: verses}
}

// DailyVerse picks one verse per calendar day. The pick is a pure function of
// the date so every client sees the same verse without coordination.
func (h *VersesHandler) DailyVerse(w http.ResponseWriter, r *http.Request) {
	verses, err := h.verses.ListVerses(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load verses", r))
		return
	}
	if len(verses) == 0 {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No verses available", r))
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	seed, _ := strconv.Atoi(strings.ReplaceAll(today, "-", ""))

	writeJSON(w, http.StatusOK, models.DailyVerse{
		Date:  today,
		Verse: verses[seed%len(verses)],
	})
}

func (h *VersesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query parameter q is required", r))
		return
	}

	verses, err := h.verses.SearchVerses(r.Context(), query, searchLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Search failed", r))
		return
	}
	if verses == nil {
		verses = []models.Verse{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": verses,
	})
}
