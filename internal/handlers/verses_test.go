package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

type fakeVerses struct {
	verses []models.Verse
	err    error
}

func (f *fakeVerses) ListVerses(context.Context) ([]models.Verse, error) {
	return f.verses, f.err
}

func (f *fakeVerses) SearchVerses(_ context.Context, query string, limit int) ([]models.Verse, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Verse
	for _, v := range f.verses {
		if len(out) == limit {
			break
		}
		if strings.HasPrefix(strings.ToLower(v.Translation), strings.ToLower(query)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func TestDailyVerse_DeterministicForDate(t *testing.T) {
	source := &fakeVerses{verses: []models.Verse{
		{ID: "v1", Chapter: 2, Verse: 47, Translation: "You have a right to perform your duty"},
		{ID: "v2", Chapter: 2, Verse: 48, Translation: "Perform your duty equipoised"},
		{ID: "v3", Chapter: 4, Verse: 7, Translation: "Whenever there is a decline in righteousness"},
	}}
	h := NewVersesHandler(source)

	first := httptest.NewRecorder()
	h.DailyVerse(first, httptest.NewRequest(http.MethodGet, "/daily-verse", nil))
	second := httptest.NewRecorder()
	h.DailyVerse(second, httptest.NewRequest(http.MethodGet, "/daily-verse", nil))

	if first.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", first.Code)
	}

	var a, b models.DailyVerse
	json.Unmarshal(first.Body.Bytes(), &a)
	json.Unmarshal(second.Body.Bytes(), &b)

	if a.Verse.ID != b.Verse.ID {
		t.Errorf("Same-day picks differ: %q vs %q", a.Verse.ID, b.Verse.ID)
	}
	if a.Date == "" {
		t.Error("Expected the pick date in the response")
	}
}

func TestDailyVerse_NoVerses(t *testing.T) {
	h := NewVersesHandler(&fakeVerses{})

	rr := httptest.NewRecorder()
	h.DailyVerse(rr, httptest.NewRequest(http.MethodGet, "/daily-verse", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for empty collection, got %d", rr.Code)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	h := NewVersesHandler(&fakeVerses{})

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/search", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without q, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/search?q=%20%20", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for blank q, got %d", rr.Code)
	}
}

func TestSearch_ReturnsMatches(t *testing.T) {
	source := &fakeVerses{verses: []models.Verse{
		{ID: "v1", Translation: "Perform your duty"},
		{ID: "v2", Translation: "Abandon all varieties of dharma"},
	}}
	h := NewVersesHandler(source)

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/search?q=perform", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp struct {
		Query   string         `json:"query"`
		Results []models.Verse `json:"results"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Query != "perform" {
		t.Errorf("Expected query echoed back, got %q", resp.Query)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "v1" {
		t.Errorf("Unexpected results: %+v", resp.Results)
	}
}

func TestSearch_SourceError(t *testing.T) {
	h := NewVersesHandler(&fakeVerses{err: errors.New("firestore down")})

	rr := httptest.NewRecorder()
	h.Search(rr, httptest.NewRequest(http.MethodGet, "/search?q=duty", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
}
