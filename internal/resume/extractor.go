// Package resume pulls candidate identity fields out of uploaded resumes.
package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"interview-session-service/internal/domain"
)

// Media types accepted by Extract. The short forms are accepted too.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedFormat is returned for anything other than PDF or DOCX.
var ErrUnsupportedFormat = errors.New("unsupported file format, upload a PDF or DOCX resume")

// ExtractionError reports a document that could not be read.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "failed to parse resume: " + e.Reason
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	namePattern  = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+`)
)

// Extractor implements best-effort field extraction. Fields it cannot find
// are left empty.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, data []byte, mediaType string) (domain.Identity, error) {
	var (
		text string
		err  error
	)
	switch normalizeMediaType(mediaType) {
	case MediaTypePDF:
		text, err = pdfText(data)
	case MediaTypeDOCX:
		text, err = docxText(data)
	default:
		return domain.Identity{}, ErrUnsupportedFormat
	}
	if err != nil {
		return domain.Identity{}, &ExtractionError{Reason: err.Error()}
	}
	return ExtractFields(text), nil
}

// ExtractFields finds the first name, email and phone number in text.
func ExtractFields(text string) domain.Identity {
	return domain.Identity{
		Name:  namePattern.FindString(text),
		Email: emailPattern.FindString(text),
		Phone: strings.TrimSpace(phonePattern.FindString(text)),
	}
}

func normalizeMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "pdf", ".pdf", MediaTypePDF:
		return MediaTypePDF
	case "docx", ".docx", MediaTypeDOCX:
		return MediaTypeDOCX
	}
	return mt
}

// pdfText recovers from panics raised by the pdf package on malformed
// content streams.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// docxText concatenates the text runs of word/document.xml, one line per
// paragraph.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()
		return documentXMLText(rc)
	}
	return "", errors.New("docx has no word/document.xml")
}

func documentXMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("read document part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}
