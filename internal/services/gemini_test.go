package services

import (
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

func TestBuildGitaPrompt_WithContext(t *testing.T) {
	prompt := BuildGitaPrompt("Chapter 1: Arjuna Visada Yoga - Arjuna despairs.")

	if !strings.Contains(prompt, "act as GitaAI") {
		t.Error("Prompt missing persona instruction")
	}
	if !strings.Contains(prompt, "Chapter 1: Arjuna Visada Yoga - Arjuna despairs.") {
		t.Error("Prompt missing injected chapter context")
	}
	if strings.Contains(prompt, "Could not retrieve") {
		t.Error("Fallback text must not appear when context is provided")
	}
}

func TestBuildGitaPrompt_FallbackWithoutContext(t *testing.T) {
	prompt := BuildGitaPrompt("")
	if !strings.Contains(prompt, "Could not retrieve Bhagavad Gita context") {
		t.Error("Expected fallback text when no context is available")
	}
}

func TestHistoryToGenai_RoleMapping(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "What is dharma?"},
		{Role: models.RoleAssistant, Content: "Dharma is your sacred duty."},
		{Role: models.RoleUser, Content: "How do I follow it?"},
	}

	contents := historyToGenai(history)
	if len(contents) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(contents))
	}

	wantRoles := []string{"user", "model", "user"}
	for i, c := range contents {
		if c.Role != wantRoles[i] {
			t.Errorf("Entry %d: expected role %q, got %q", i, wantRoles[i], c.Role)
		}
		text, ok := c.Parts[0].(genai.Text)
		if !ok || string(text) != history[i].Content {
			t.Errorf("Entry %d: content not carried over", i)
		}
	}
}

func TestHistoryToGenai_Empty(t *testing.T) {
	if got := historyToGenai(nil); got != nil {
		t.Errorf("Expected nil history, got %v", got)
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("  The Gita teaches equanimity.  ")}}},
			{Content: nil},
		},
	}

	if got := responseText(resp); got != "The Gita teaches equanimity." {
		t.Errorf("responseText = %q", got)
	}
}
