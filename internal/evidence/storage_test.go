package evidence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGetDocument(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte("%PDF-1.7 fake licence")
	if err := s.PutDocument(ctx, "shop1", "licence.pdf", "application/pdf", data); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	got, err := s.GetDocument(ctx, "shop1", "licence.pdf")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetDocument = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "shop1", "documents", "licence.pdf")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	_, err := s.GetDocument(context.Background(), "shop1", "nonexistent.pdf")
	if err == nil {
		t.Error("expected error for nonexistent document")
	}
}
