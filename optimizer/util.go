package optimizer

import (
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip = regexp.MustCompile(`[^a-zA-Z0-9\s]+`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slugify lowercases s, strips every character outside [A-Za-z0-9\s], and
// joins the remaining whitespace runs with delimiter ("-" when empty).
// Transliteration of non-ASCII letters is out of scope: they are dropped.
func Slugify(s, delimiter string) string {
	if delimiter == "" {
		delimiter = "-"
	}
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return slugSpace.ReplaceAllString(s, delimiter)
}

// IsJSON reports whether s is a syntactically valid JSON document.
func IsJSON(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return json.Valid([]byte(s))
}

// normalizeText applies the cleanup used by the normalize rule: unicode NFC
// composition, non-breaking spaces folded to plain spaces, and surrounding
// whitespace trimmed.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(s)
}
