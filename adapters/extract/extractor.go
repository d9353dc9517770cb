// Package extract converts uploaded study documents to plain text. PDF and
// image extraction shell out to the poppler and tesseract tools; DOCX files
// are unpacked directly since they are zip archives of WordprocessingML.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"quizforge/models"
)

// Extractor implements ports.TextExtractor using local tooling.
type Extractor struct {
	pdfTool string
	ocrTool string
}

// NewExtractor creates an extractor with the default tool names
// (pdftotext, tesseract), resolved via PATH at call time.
func NewExtractor() *Extractor {
	return &Extractor{
		pdfTool: "pdftotext",
		ocrTool: "tesseract",
	}
}

func (e *Extractor) Extract(ctx context.Context, path string, kind models.SourceType) (string, error) {
	switch kind {
	case models.SourcePDF:
		return e.extractPDF(ctx, path)
	case models.SourceDOCX:
		return extractDOCX(path)
	case models.SourceImage:
		return e.extractImage(ctx, path)
	default:
		return "", fmt.Errorf("no extractor for source type %q", kind)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	out, err := runTool(ctx, e.pdfTool, path, "-")
	if err != nil {
		return "", fmt.Errorf("pdf extraction failed: %w", err)
	}
	return out, nil
}

// extractImage attempts language-configured recognition first and falls
// back to a bare invocation. Only a single failure is surfaced when both
// attempts fail.
func (e *Extractor) extractImage(ctx context.Context, path string) (string, error) {
	out, primaryErr := runTool(ctx, e.ocrTool, path, "stdout", "-l", "eng")
	if primaryErr == nil {
		return out, nil
	}

	out, fallbackErr := runTool(ctx, e.ocrTool, path, "stdout")
	if fallbackErr != nil {
		return "", fmt.Errorf("image extraction failed: %w", primaryErr)
	}
	return out, nil
}

func runTool(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %v: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %v", name, err)
	}
	return stdout.String(), nil
}

// extractDOCX reads word/document.xml from the archive and joins the text
// runs, paragraph by paragraph.
func extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("docx extraction failed: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("docx extraction failed: %w", err)
		}
		defer rc.Close()
		return docxText(rc)
	}

	return "", fmt.Errorf("docx extraction failed: no word/document.xml in archive")
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx extraction failed: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
