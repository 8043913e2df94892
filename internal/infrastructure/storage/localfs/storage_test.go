package localfs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "doc-1_scan.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, err := s.Open(ctx, "doc-1_scan.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pdf bytes" {
		t.Errorf("content = %q", got)
	}
}

func TestOpenMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Open(context.Background(), "nope.pdf")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Errorf("error %v, want ErrDocumentNotFound kind", err)
	}
}

func TestSaveRejectsTraversalKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", "..", "a/b.pdf", `a\b.pdf`, "../escape.pdf"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) accepted an invalid key", key)
		}
	}
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), "doc.pdf", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc.pdf" {
		t.Errorf("dir entries = %v, want only the saved document", entries)
	}
}

func TestRemove(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "doc.pdf", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, "doc.pdf"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Open(ctx, "doc.pdf"); err == nil {
		t.Fatal("document still opens after removal")
	}
	// removing a missing key is not an error
	if err := s.Remove(ctx, "doc.pdf"); err != nil {
		t.Errorf("Remove of missing key: %v", err)
	}
}
