package adapter

import (
	"regexp"
	"strings"

	"jobingest/internal/config"
	"jobingest/internal/filter"
)

// MatchTags returns every rule Tag whose Any[] keywords appear (whole-word,
// case-insensitive) anywhere in text. Grounded on rank.YAMLScorer's
// keyword-accumulation loop, generalized from a numeric score to a tag set.
func MatchTags(text string, rules []config.Rule) []string {
	if strings.TrimSpace(text) == "" || len(rules) == 0 {
		return nil
	}

	var tags []string
	for _, r := range rules {
		if ruleMatches(text, r) {
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

// FirstMatchingTag returns the first rule whose keywords match, or "" if
// none do. Used for single-valued fields (job type, experience level)
// where §4.6 wants one value, not a set.
func FirstMatchingTag(text string, rules []config.Rule) string {
	for _, r := range rules {
		if ruleMatches(text, r) {
			return r.Tag
		}
	}
	return ""
}

func ruleMatches(text string, r config.Rule) bool {
	pat := tagPattern(r)
	if pat == nil {
		return false
	}
	return pat.MatchString(text)
}

// tagPattern compiles fresh on every call rather than caching: the worker
// pool (§4.5) runs postings through this concurrently, and rule sets are
// short enough that recompiling is cheap relative to the HTTP fetch it
// follows.
func tagPattern(r config.Rule) *regexp.Regexp {
	var escaped []string
	for _, kw := range r.Any {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		escaped = append(escaped, filter.EscapeKeyword(kw))
	}
	if len(escaped) == 0 {
		return nil
	}

	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}
