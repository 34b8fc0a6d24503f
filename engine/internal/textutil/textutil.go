// Package textutil provides the text cleanup primitives the relevance
// engine and adapter share: HTML stripping, lenient date parsing, and
// dedup-normalization.
package textutil

import (
	"html"
	"regexp"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"
)

var paragraphSentinel = "\x00PARA\x00"

// StripHTML removes <script>/<style> blocks and all tags, decodes HTML
// entities, and collapses whitespace while preserving paragraph breaks.
// Returns "" for an empty or all-tag input.
func StripHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var sb strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(raw))
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}

		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == xhtml.StartTagToken {
					skipDepth++
				}
				continue
			}
			if isBlockTag(tag) {
				sb.WriteString(paragraphSentinel)
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if isBlockTag(tag) {
				sb.WriteString(paragraphSentinel)
			}
		case xhtml.TextToken:
			if skipDepth > 0 {
				continue
			}
			sb.Write(z.Text())
		}
	}

	decoded := html.UnescapeString(sb.String())

	// Collapse whitespace while keeping the paragraph sentinel intact.
	parts := strings.Split(decoded, paragraphSentinel)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(collapseWhitespaceRe.ReplaceAllString(p, " "))
	}
	joined := strings.Join(filterEmpty(parts), "\n\n")

	return strings.TrimSpace(joined)
}

var collapseWhitespaceRe = regexp.MustCompile(`\s+`)

func filterEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "br", "div", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "table":
		return true
	}
	return false
}

// dateLayouts are tried in order; lenient ISO parsing per §4.1.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate leniently parses an ISO-ish timestamp, returning ok=false
// rather than an error when nothing matches.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// punctuationClass is the set of characters NormalizeForDeduplication
// replaces with spaces, per §4.1.
const punctuationClass = ".,/#!$%^&*;:{}=-_`~()[]?+"

var punctuationReplacer = buildPunctuationReplacer()

func buildPunctuationReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(punctuationClass)*2)
	for _, r := range punctuationClass {
		pairs = append(pairs, string(r), " ")
	}
	return strings.NewReplacer(pairs...)
}

// NormalizeForDeduplication lower-cases, strips punctuation, and collapses
// whitespace. Used to build CanonicalPosting.NormalizedFingerprint.
func NormalizeForDeduplication(s string) string {
	s = strings.ToLower(s)
	s = punctuationReplacer.Replace(s)
	s = collapseWhitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
