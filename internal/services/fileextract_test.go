package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAttachmentSummary(t *testing.T) {
	s := NewFileExtractService()

	got := s.AttachmentSummary("notes.txt", "chapter two discusses the eternal self")
	if !strings.HasPrefix(got, "[Attached file: notes.txt]\n") {
		t.Errorf("Missing attachment header: %q", got)
	}
	if !strings.Contains(got, "chapter two discusses the eternal self") {
		t.Error("Extracted text missing from summary")
	}
	if strings.Contains(got, "[...truncated]") {
		t.Error("Short text must not be marked truncated")
	}
}

func TestAttachmentSummary_Truncates(t *testing.T) {
	s := NewFileExtractService()

	got := s.AttachmentSummary("big.pdf", strings.Repeat("x", maxAttachmentChars+100))
	if !strings.HasSuffix(got, "\n[...truncated]") {
		t.Error("Long text must be marked truncated")
	}
}

func TestExtractTextFromPath_TXT(t *testing.T) {
	s := NewFileExtractService()

	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte("perform your duty without attachment"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.ExtractTextFromPath(path)
	if err != nil {
		t.Fatalf("ExtractTextFromPath: %v", err)
	}
	if !strings.Contains(got, "perform your duty without attachment") {
		t.Errorf("Extracted text wrong: %q", got)
	}
}

func TestExtractTextFromPath_UnsupportedType(t *testing.T) {
	s := NewFileExtractService()
	if _, err := s.ExtractTextFromPath("movie.mp4"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
