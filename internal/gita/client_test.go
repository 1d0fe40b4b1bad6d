package gita

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

func testClient(server *httptest.Server) *Client {
	c := NewClient("test-key", "bhagavad-gita3.p.rapidapi.com", nil)
	c.baseURL = server.URL
	c.http = server.Client()
	return c
}

func TestListChapters(t *testing.T) {
	var gotKey, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"chapter_number": 1, "name": "अर्जुनविषादयोग", "name_translated": "Arjuna's Dilemma", "chapter_summary": "Arjuna despairs on the battlefield.", "verses_count": 47},
			{"chapter_number": 2, "name": "सांख्ययोग", "name_translated": "Transcendental Knowledge", "chapter_summary": "Krishna begins his teaching.", "verses_count": 72}
		]`))
	}))
	defer server.Close()

	c := testClient(server)
	chapters, err := c.ListChapters(context.Background())
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}

	if len(chapters) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].ChapterNumber != 1 || chapters[0].NameTranslated != "Arjuna's Dilemma" {
		t.Errorf("First chapter parsed wrong: %+v", chapters[0])
	}
	if gotKey != "test-key" {
		t.Errorf("Expected x-rapidapi-key header, got %q", gotKey)
	}
	if gotHost != "bhagavad-gita3.p.rapidapi.com" {
		t.Errorf("Expected x-rapidapi-host header, got %q", gotHost)
	}
}

func TestListChapters_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(server)
	if _, err := c.ListChapters(context.Background()); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
}

func TestGetChapter_ValidatesNumber(t *testing.T) {
	c := NewClient("k", "h", nil)

	for _, n := range []int{0, -1, 19} {
		if _, err := c.GetChapter(context.Background(), n); err == nil {
			t.Errorf("Expected error for chapter %d", n)
		}
	}
}

func TestGetChapter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/chapters/12/" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chapter_number": 12, "name": "भक्तियोग", "name_translated": "The Yoga of Devotion", "chapter_summary": "The path of devotion.", "verses_count": 20}`))
	}))
	defer server.Close()

	c := testClient(server)
	chapter, err := c.GetChapter(context.Background(), 12)
	if err != nil {
		t.Fatalf("GetChapter: %v", err)
	}
	if chapter.ChapterNumber != 12 || chapter.VersesCount != 20 {
		t.Errorf("Chapter parsed wrong: %+v", chapter)
	}
}

func TestContextSummary(t *testing.T) {
	chapters := []models.Chapter{
		{ChapterNumber: 1, Name: "Arjuna Visada Yoga", ChapterSummary: "Arjuna despairs."},
		{ChapterNumber: 2, Name: "Sankhya Yoga", ChapterSummary: "Krishna teaches."},
	}

	got := ContextSummary(chapters)
	want := "Chapter 1: Arjuna Visada Yoga - Arjuna despairs.\n\nChapter 2: Sankhya Yoga - Krishna teaches."
	if got != want {
		t.Errorf("ContextSummary = %q, want %q", got, want)
	}
}

func TestContextSummary_Empty(t *testing.T) {
	if got := ContextSummary(nil); got != "" {
		t.Errorf("Expected empty context for no chapters, got %q", got)
	}
}
