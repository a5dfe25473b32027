package pdfvalidation

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Limits bounds an uploaded PDF.
type Limits struct {
	MaxBytes     int64
	MaxPages     int
	DocumentName string
}

// MarksheetLimits apply to documents attached to an application.
var MarksheetLimits = Limits{
	MaxBytes:     5 << 20,
	MaxPages:     20,
	DocumentName: "marksheet",
}

// Result is the outcome of a validation. Reason is set when Valid is false.
type Result struct {
	Valid     bool
	PageCount int
	Size      int64
	Reason    string
}

// Validate checks size, header and page count of content.
func Validate(content []byte, limits Limits) Result {
	result := Result{Size: int64(len(content))}

	if limits.MaxBytes > 0 && result.Size > limits.MaxBytes {
		result.Reason = fmt.Sprintf("%s exceeds the maximum size of %d bytes", limits.DocumentName, limits.MaxBytes)
		return result
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Reason = "invalid PDF file: missing PDF header"
		return result
	}

	pages, err := PageCount(content)
	if err != nil {
		result.Reason = fmt.Sprintf("failed to read PDF: %v", err)
		return result
	}
	result.PageCount = pages

	switch {
	case pages == 0:
		result.Reason = "PDF has no pages"
	case limits.MaxPages > 0 && pages > limits.MaxPages:
		result.Reason = fmt.Sprintf("PDF has %d pages, the %s limit is %d", pages, limits.DocumentName, limits.MaxPages)
	default:
		result.Valid = true
	}
	return result
}

// PageCount parses content and returns its number of pages.
func PageCount(content []byte) (n int, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	content = trimTrailingGarbage(content)
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return reader.NumPage(), nil
}

// trimTrailingGarbage cuts anything after the last %%EOF marker, which some
// scanners append.
func trimTrailingGarbage(content []byte) []byte {
	lastEOF := bytes.LastIndex(content, []byte("%%EOF"))
	if lastEOF == -1 {
		return content
	}
	end := lastEOF + len("%%EOF")
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}
