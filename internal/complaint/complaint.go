package complaint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrEmpty is returned when a complaint is empty after trimming.
var ErrEmpty = errors.New("complaint text is empty")

// TooLongError is returned instead of silently truncating: a cut-off
// complaint would misreport the problem.
type TooLongError struct {
	Length int
	Max    int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("complaint text is %d characters, limit is %d", e.Length, e.Max)
}

var (
	fenceRE      = regexp.MustCompile("`{3,}")
	markerRE     = regexp.MustCompile(`(?i)\b(BEGIN|END)\s+COMPLAINT\b`)
	whitespaceRE = regexp.MustCompile(`[ \t]{2,}`)
)

// Normalize cleans raw complaint text for classification.
//
// Validation is intentionally strict: empty input and over-limit input are
// rejected, never repaired. Control characters are removed and the
// delimiter sequences the prompt uses to fence user text are neutralized
// so submitted text cannot impersonate prompt structure. Normalize is
// idempotent.
func Normalize(raw string, maxLen int) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmpty
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	text = b.String()

	// Whitespace is collapsed first so a marker split by extra spaces
	// cannot reassemble after neutralization.
	text = whitespaceRE.ReplaceAllString(text, " ")
	text = fenceRE.ReplaceAllString(text, "'''")
	text = markerRE.ReplaceAllString(text, "$1-COMPLAINT")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrEmpty
	}
	if n := utf8.RuneCountInString(text); maxLen > 0 && n > maxLen {
		return "", &TooLongError{Length: n, Max: maxLen}
	}
	return text, nil
}
