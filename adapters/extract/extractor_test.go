package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quizforge/models"
)

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Cell biology covers the structure of cells.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Mitochondria produce </w:t></w:r><w:r><w:t>ATP.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeTestDocx(t *testing.T, dir string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create archive entry: %v", err)
	}
	if _, err := f.Write([]byte(docxBody)); err != nil {
		t.Fatalf("write archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	path := filepath.Join(dir, "notes.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return path
}

func TestExtractDOCX(t *testing.T) {
	path := writeTestDocx(t, t.TempDir())

	text, err := NewExtractor().Extract(context.Background(), path, models.SourceDOCX)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !strings.Contains(text, "structure of cells") {
		t.Errorf("Expected first paragraph in output, got %q", text)
	}
	// Runs split across elements must join without separators
	if !strings.Contains(text, "Mitochondria produce ATP.") {
		t.Errorf("Expected joined text runs, got %q", text)
	}
}

func TestExtractDOCX_MissingDocument(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if _, err := w.Create("other.xml"); err != nil {
		t.Fatalf("create archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	path := filepath.Join(dir, "empty.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	_, err := NewExtractor().Extract(context.Background(), path, models.SourceDOCX)
	if err == nil {
		t.Fatal("Expected error for archive without word/document.xml")
	}
}

func TestExtract_UnknownKind(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), "whatever", models.SourceTopic)
	if err == nil {
		t.Fatal("Expected error for topic source type")
	}
}
