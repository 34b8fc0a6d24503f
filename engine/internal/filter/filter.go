// Package filter implements the structural and keyword matching primitives
// the relevance engine composes: restrictive-pattern detection against a
// built-in region vocabulary, inclusive-keyword substring matching, and the
// regex escaping policy shared by both.
package filter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// escapeClass is the punctuation set every keyword is escaped against
// before being folded into an alternation, per §4.2.
const escapeClass = `-/\^$*+?.()|[]{}`

// EscapeKeyword escapes regex metacharacters in kw so it can be safely
// embedded in an alternation without ever being interpreted as a pattern.
func EscapeKeyword(kw string) string {
	var sb strings.Builder
	for _, r := range kw {
		if strings.ContainsRune(escapeClass, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// regionVocabulary is the fixed, caller-independent set of region names
// the structural patterns recognize (§4.2). Order does not matter here;
// every entry is tried.
var regionVocabulary = []string{
	"US", "USA", "United States", "America",
	"Canada",
	"UK",
	"EU", "Europe", "EMEA",
	"APAC", "Asia",
	"Australia",
	"New Zealand",
	"North America",
}

// structuralPatternsFor builds, for one region term, the set of
// structural regexes §4.2 lists: "(Region Only)", "[Region Only]",
// "Region only", "based|located|must be|reside in Region",
// "Region resident(s)", "eligible|authorized to work in Region",
// "Region based"/"Region-based".
func structuralPatternsFor(region string) []*regexp.Regexp {
	r := EscapeKeyword(region)
	patterns := []string{
		`\(` + r + ` Only\)`,
		`\[` + r + ` Only\]`,
		`\b` + r + ` only\b`,
		`\b(based|located|must be|reside) in ` + r + `\b`,
		`\b` + r + ` resident(s)?\b`,
		`\b(eligible|authorized) to work in ` + r + `\b`,
		`\b` + r + `[\s-]based\b`,
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

var builtinStructuralPatterns = buildStructuralPatterns()

func buildStructuralPatterns() []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, region := range regionVocabulary {
		out = append(out, structuralPatternsFor(region)...)
	}
	return out
}

// wholeWordPattern compiles a whole-word, case-insensitive alternation
// over keywords, or nil if keywords is empty.
func wholeWordPattern(keywords []string) *regexp.Regexp {
	var escaped []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		escaped = append(escaped, EscapeKeyword(kw))
	}
	if len(escaped) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// DetectResult is the outcome of DetectRestrictivePattern.
type DetectResult struct {
	IsRestrictive  bool
	MatchedKeyword string
}

// DetectRestrictivePattern checks text against the built-in region
// structural patterns AND a whole-word match of the caller's keywords
// list. The two checks are independent: the region vocabulary is always
// active regardless of what the caller passes in keywords.
func DetectRestrictivePattern(text string, keywords []string, log *slog.Logger) DetectResult {
	if text == "" {
		return DetectResult{}
	}

	for _, re := range builtinStructuralPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			match := text[loc[0]:loc[1]]
			return DetectResult{IsRestrictive: true, MatchedKeyword: match}
		}
	}

	if re := wholeWordPattern(keywords); re != nil {
		if loc := re.FindStringIndex(text); loc != nil {
			match := text[loc[0]:loc[1]]
			return DetectResult{IsRestrictive: true, MatchedKeyword: match}
		}
	}

	if log != nil {
		log.Debug("no restrictive pattern matched", "text_len", len(text))
	}
	return DetectResult{}
}

// InclusiveResult is the outcome of ContainsInclusiveSignal.
type InclusiveResult struct {
	IsInclusive    bool
	MatchedKeyword string
}

// ContainsInclusiveSignal does a case-insensitive substring match over
// keywords, preserving caller list order; the first hit wins ties.
func ContainsInclusiveSignal(text string, keywords []string, log *slog.Logger) InclusiveResult {
	low := strings.ToLower(text)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(low, k) {
			return InclusiveResult{IsInclusive: true, MatchedKeyword: kw}
		}
	}
	if log != nil {
		log.Debug("no inclusive signal matched", "candidates", len(keywords))
	}
	return InclusiveResult{}
}

// FindAllIndexes returns the start/end byte offsets of every
// case-insensitive occurrence of kw in text. Used by the ±30-character
// contextual window checks in the relevance engine.
func FindAllIndexes(text, kw string) [][2]int {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return nil
	}
	re := regexp.MustCompile(fmt.Sprintf(`(?i)%s`, EscapeKeyword(kw)))
	return re.FindAllStringIndex(text, -1)
}

// Window returns the ±radius character window around [start,end) in text,
// clamped to the text bounds.
func Window(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}
