// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned when the bytes are not a PDF the reader can parse.
var ErrUnreadable = errors.New("unreadable pdf")

var (
	whitespaceRuns = regexp.MustCompile(`\s{2,}`)
	newlineRuns    = regexp.MustCompile(`\n+`)
)

// ExtractText returns the text of every page joined by newlines, with
// whitespace runs collapsed and the result trimmed.
func ExtractText(data []byte) (text string, err error) {
	// The reader panics on some malformed cross reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}

	return Clean(sb.String()), nil
}

// Clean collapses runs of whitespace into a single space, squeezes repeated
// newlines and trims the result.
func Clean(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
