// Package sanitize removes markup tags from text snippets. It tokenizes with
// x/net/html rather than scanning for angle brackets, so attribute values
// containing '>' and unterminated tags behave predictably, while text content
// is passed through byte-for-byte (entities stay as written).
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes markup tags from s. Tags whose lowercase name appears in
// allowed are kept verbatim, including their attributes; everything else,
// comments and doctypes included, is dropped. Text content is preserved
// as-is.
func StripTags(s string, allowed []string) string {
	if s == "" || !strings.ContainsRune(s, '<') {
		return s
	}

	keep := make(map[string]struct{}, len(allowed))
	for _, tag := range allowed {
		keep[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF on well-formed input; any other tokenizer error ends the
			// scan with whatever was collected so far.
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// TagName lowercases the tokenizer's buffer in place, so the raw
			// bytes must be copied first to emit the tag as written.
			raw := append([]byte(nil), z.Raw()...)
			name, _ := z.TagName()
			if _, ok := keep[string(name)]; ok {
				b.Write(raw)
			}
		default:
			// comments, doctypes: dropped
		}
	}
}
