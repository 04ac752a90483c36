package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Quality of an extraction, from best to worst.
const (
	QualityExact       = "exact"
	QualityHeuristic   = "heuristic"
	QualityPlaceholder = "placeholder"
)

// Thresholds for the tiered PDF fallback chain, chosen empirically.
const (
	pdfMinTextLen     = 50
	pdfPlaceholderLen = 100
	printableRunLen   = 20
)

// ErrUnsupportedType is returned for declared formats with no extractor.
var ErrUnsupportedType = errors.New("unsupported content type")

// Result carries extracted text and how trustworthy the extraction was.
type Result struct {
	Text    string
	Quality string
}

// Text derives plain text from raw document bytes and their declared content
// type. DOCX and plain text are exact; failure there is a hard error. PDF is
// best-effort and never fails: structural parse first, then heuristic byte
// scans, then a fixed placeholder so the record always has analyzable text.
func Text(ctx context.Context, data []byte, contentType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	normalized := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch normalized {
	case mimePDF:
		return extractPDF(data), nil
	case mimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return Result{}, fmt.Errorf("extract docx: %w", err)
		}
		return Result{Text: text, Quality: QualityExact}, nil
	case mimeText:
		if !utf8.Valid(data) {
			return Result{}, fmt.Errorf("extract text: content is not valid utf-8")
		}
		return Result{Text: string(data), Quality: QualityExact}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
}

func extractPDF(data []byte) Result {
	if text := parsePDF(data); len(text) >= pdfMinTextLen {
		return Result{Text: text, Quality: QualityExact}
	}

	text := scanTextOperators(data)
	if len(text) < pdfMinTextLen {
		text = scanPrintableRuns(data)
	}
	if len(text) < pdfPlaceholderLen {
		return Result{Text: placeholderContract, Quality: QualityPlaceholder}
	}
	return Result{Text: text, Quality: QualityHeuristic}
}

// parsePDF attempts a structural parse. The library panics on some malformed
// inputs, so failures of any kind collapse to an empty result.
func parsePDF(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// scanTextOperators collects string literals between BT/ET text blocks,
// stripping non-printable bytes.
func scanTextOperators(data []byte) string {
	var spans []string
	rest := data
	for {
		start := bytes.Index(rest, []byte("BT"))
		if start < 0 {
			break
		}
		rest = rest[start+2:]
		end := bytes.Index(rest, []byte("ET"))
		if end < 0 {
			break
		}
		block := rest[:end]
		rest = rest[end+2:]

		for _, literal := range parenLiterals(block) {
			if cleaned := stripNonPrintable(literal); cleaned != "" {
				spans = append(spans, cleaned)
			}
		}
	}
	return strings.TrimSpace(strings.Join(spans, " "))
}

// parenLiterals extracts (...) string literals, honoring backslash escapes
// and nested parentheses.
func parenLiterals(block []byte) []string {
	var out []string
	var current []byte
	depth := 0
	escaped := false
	for _, b := range block {
		if depth == 0 {
			if b == '(' {
				depth = 1
				current = current[:0]
			}
			continue
		}
		if escaped {
			escaped = false
			current = append(current, b)
			continue
		}
		switch b {
		case '\\':
			escaped = true
		case '(':
			depth++
			current = append(current, b)
		case ')':
			depth--
			if depth == 0 {
				out = append(out, string(current))
			} else {
				current = append(current, b)
			}
		default:
			current = append(current, b)
		}
	}
	return out
}

// scanPrintableRuns finds any run of printable ASCII at least printableRunLen
// bytes long anywhere in the stream.
func scanPrintableRuns(data []byte) string {
	var runs []string
	start := -1
	for i, b := range data {
		if b >= 0x20 && b < 0x7f {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= printableRunLen {
			runs = append(runs, string(data[start:i]))
		}
		start = -1
	}
	if start >= 0 && len(data)-start >= printableRunLen {
		runs = append(runs, string(data[start:]))
	}
	return strings.TrimSpace(strings.Join(runs, " "))
}

func stripNonPrintable(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
