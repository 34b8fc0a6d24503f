// Package relevance implements the rule-driven decision of whether a raw
// posting belongs in the product: REJECT / ACCEPT_GLOBAL / ACCEPT_LATAM /
// UNKNOWN sub-checks combined into a final IRRELEVANT / RELEVANT /
// NEEDS_REVIEW decision (§4.4).
package relevance

import (
	"log/slog"
	"strings"

	"jobingest/internal/domain"
	"jobingest/internal/filter"
	"jobingest/internal/filterconfig"
	"jobingest/internal/textutil"
)

// Decision is the top-level outcome of Assess.
type Decision string

const (
	Irrelevant  Decision = "IRRELEVANT"
	Relevant    Decision = "RELEVANT"
	NeedsReview Decision = "NEEDS_REVIEW"
)

// subVerdict is the outcome of one of the three independent sub-checks.
type subVerdict string

const (
	subReject       subVerdict = "REJECT"
	subAcceptGlobal subVerdict = "ACCEPT_GLOBAL"
	subAcceptLatam  subVerdict = "ACCEPT_LATAM"
	subUnknown      subVerdict = "UNKNOWN"
)

// Result is the full output of Assess.
type Result struct {
	Decision Decision
	Region   domain.HiringRegion // meaningful only when Decision == Relevant/NeedsReview
	Reason   string
}

const contextWindowRadius = 30

// Assess is the pure function combining the location, metadata, and
// content sub-checks per §4.4.
func Assess(raw domain.RawPosting, cfg *filterconfig.FilterConfig, log *slog.Logger) Result {
	if !raw.IsListed {
		return Result{Decision: Irrelevant, Reason: "not listed by provider"}
	}

	if cfg != nil {
		if threshold, ok := cfg.UpdatedAfterThreshold(); ok && raw.UpdatedAt.Before(threshold) {
			return Result{Decision: Irrelevant, Reason: "updated before PROCESS_JOBS_UPDATED_AFTER_DATE threshold"}
		}
	}

	locVerdict, locReason := locationCheck(raw, cfg, log)
	metaVerdict, metaReason := metadataCheck(raw, cfg)
	contentVerdict, contentReason := contentCheck(raw, cfg, log)

	decision, region, reason := combine(locVerdict, locReason, metaVerdict, metaReason, contentVerdict, contentReason, raw)

	if decision == Relevant && raw.WorkplaceType == domain.WorkplaceHybrid && raw.Kind == domain.SourceLever {
		return Result{Decision: NeedsReview, Region: region, Reason: reason + "; hybrid Lever posting flagged for review"}
	}

	return Result{Decision: decision, Region: region, Reason: reason}
}

func combine(loc subVerdict, locReason string, meta subVerdict, metaReason string, content subVerdict, contentReason string, raw domain.RawPosting) (Decision, domain.HiringRegion, string) {
	if loc == subReject {
		return Irrelevant, "", "location: " + locReason
	}
	if meta == subReject {
		return Irrelevant, "", "metadata: " + metaReason
	}
	if content == subReject {
		return Irrelevant, "", "content: " + contentReason
	}

	if loc == subAcceptLatam {
		return Relevant, domain.RegionLATAM, "location: " + locReason
	}
	if meta == subAcceptLatam {
		return Relevant, domain.RegionLATAM, "metadata: " + metaReason
	}
	if content == subAcceptLatam {
		return Relevant, domain.RegionLATAM, "content: " + contentReason
	}

	if loc == subAcceptGlobal {
		return Relevant, domain.RegionGlobal, "location: " + locReason
	}
	if meta == subAcceptGlobal {
		return Relevant, domain.RegionGlobal, "metadata: " + metaReason
	}
	if content == subAcceptGlobal {
		return Relevant, domain.RegionGlobal, "content: " + contentReason
	}

	if raw.IsRemote != nil && *raw.IsRemote {
		return Relevant, domain.RegionGlobal, "isRemote fallback"
	}

	return Irrelevant, "", "no signal matched"
}

// locationCheck implements §4.4.1.
func locationCheck(raw domain.RawPosting, cfg *filterconfig.FilterConfig, log *slog.Logger) (subVerdict, string) {
	parts := []string{raw.PrimaryLocation}
	parts = append(parts, raw.SecondaryLocations...)
	parts = append(parts, raw.AddressLocality, raw.AddressRegion, raw.AddressCountry)
	text := strings.ToLower(strings.Join(nonEmpty(parts), "; "))
	if text == "" {
		return subUnknown, "no location text"
	}

	if cfg == nil {
		return subUnknown, "no filter config loaded"
	}
	lk := cfg.LocationKeywords

	if res := filter.DetectRestrictivePattern(text, lk.StrongNegativeRestriction, log); res.IsRestrictive {
		return subReject, "restrictive pattern: " + res.MatchedKeyword
	}
	if res := filter.ContainsInclusiveSignal(text, lk.StrongPositiveLatam, log); res.IsInclusive {
		return subAcceptLatam, "STRONG_POSITIVE_LATAM: " + res.MatchedKeyword
	}
	if res := filter.ContainsInclusiveSignal(text, lk.StrongPositiveGlobal, log); res.IsInclusive {
		return subAcceptGlobal, "STRONG_POSITIVE_GLOBAL: " + res.MatchedKeyword
	}
	if res := filter.ContainsInclusiveSignal(text, lk.AcceptExactBrazilTerms, log); res.IsInclusive {
		return subAcceptLatam, "ACCEPT_EXACT_BRAZIL_TERMS: " + res.MatchedKeyword
	}
	// Only reached when Brazil terms did not match, satisfying §4.4.1 rule 5's
	// "not already Brazil-matched" condition.
	if res := filter.ContainsInclusiveSignal(text, lk.AcceptExactLatamCountries, log); res.IsInclusive {
		return subAcceptLatam, "ACCEPT_EXACT_LATAM_COUNTRIES: " + res.MatchedKeyword
	}

	if verdict, reason, ok := ambiguousContext(text, lk.Ambiguous, lk.StrongNegativeRestriction, raw, log); ok {
		return verdict, reason
	}

	return subUnknown, "no location signal"
}

// ambiguousContext implements §4.4.1 rule 6: scan ±30 chars around each
// ambiguous-term occurrence for a nearby negative.
func ambiguousContext(text string, ambiguous, negatives []string, raw domain.RawPosting, log *slog.Logger) (subVerdict, string, bool) {
	if raw.IsRemote != nil && *raw.IsRemote {
		return "", "", false
	}
	for _, term := range ambiguous {
		term = strings.TrimSpace(strings.ToLower(term))
		if term == "" {
			continue
		}
		for _, idx := range filter.FindAllIndexes(text, term) {
			window := filter.Window(text, idx[0], idx[1], contextWindowRadius)
			if res := filter.DetectRestrictivePattern(window, negatives, log); res.IsRestrictive {
				return subReject, "ambiguous term '" + term + "' near restriction: " + res.MatchedKeyword, true
			}
			return subAcceptGlobal, "ambiguous term '" + term + "' with no nearby restriction", true
		}
	}
	return "", "", false
}

// metadataCheck implements §4.4.2 (Greenhouse-style providers only).
func metadataCheck(raw domain.RawPosting, cfg *filterconfig.FilterConfig) (subVerdict, string) {
	if cfg == nil || len(raw.Metadata) == 0 || len(cfg.RemoteMetadataFields) == 0 {
		return subUnknown, "no metadata rules"
	}

	best := subUnknown
	bestReason := "no metadata field matched"

	for _, item := range raw.Metadata {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		rule, ok := cfg.RemoteMetadataFields[name]
		if !ok {
			continue
		}

		verdict, reason := evalMetadataItem(name, rule, item.Value)
		best, bestReason = higherPriority(best, bestReason, verdict, reason)
		if best == subReject {
			return best, bestReason
		}
	}

	return best, bestReason
}

func higherPriority(curVerdict subVerdict, curReason string, next subVerdict, nextReason string) (subVerdict, string) {
	rank := map[subVerdict]int{subReject: 3, subAcceptLatam: 2, subAcceptGlobal: 1, subUnknown: 0}
	if rank[next] > rank[curVerdict] {
		return next, nextReason
	}
	return curVerdict, curReason
}

func evalMetadataItem(name string, rule filterconfig.MetadataFieldRule, value any) (subVerdict, string) {
	switch rule.Type {
	case "boolean":
		return evalBooleanMetadata(name, rule, value)
	case "string":
		return evalStringMetadataAny(name, rule, value)
	default:
		return subUnknown, "unrecognized metadata rule type"
	}
}

func evalBooleanMetadata(name string, rule filterconfig.MetadataFieldRule, value any) (subVerdict, string) {
	sval := stringifyValue(value)
	if sval == rule.PositiveValue {
		return subAcceptGlobal, name + "=" + sval + " matches positiveValue"
	}
	if rule.NegativeValue != "" && sval == rule.NegativeValue {
		return subReject, name + "=" + sval + " matches negativeValue"
	}
	if name == "remote eligible" {
		return subReject, name + "=" + sval + " is not the positive boolean value"
	}
	return subUnknown, "boolean value did not match any configured rule"
}

func evalStringMetadataAny(name string, rule filterconfig.MetadataFieldRule, value any) (subVerdict, string) {
	values := flattenStrings(value)
	best := subUnknown
	bestReason := "string metadata did not match"
	for _, v := range values {
		verdict, reason := evalStringMetadataOne(name, rule, v)
		best, bestReason = higherPriority(best, bestReason, verdict, reason)
		if best == subReject {
			return best, bestReason
		}
	}
	return best, bestReason
}

func evalStringMetadataOne(name string, rule filterconfig.MetadataFieldRule, v string) (subVerdict, string) {
	low := strings.ToLower(strings.TrimSpace(v))
	latamish := strings.Contains(low, "latam") || strings.Contains(low, "americas")
	globalish := strings.Contains(low, "worldwide") || strings.Contains(low, "global")

	if containsFold(rule.DisallowedValues, low) {
		return subReject, name + "=" + v + " is disallowed"
	}

	// allowedValues match wins over positiveValues: an allowed-but-not-
	// region token (e.g. "US") rejects, where the same token would only
	// default to ACCEPT_GLOBAL under positiveValues.
	if containsFold(rule.AllowedValues, low) {
		switch {
		case latamish:
			return subAcceptLatam, name + "=" + v + " is LATAM-ish (allowed)"
		case globalish:
			return subAcceptGlobal, name + "=" + v + " is global (allowed)"
		default:
			return subReject, name + "=" + v + " is an allowed-but-restrictive token"
		}
	}

	if containsFold(rule.PositiveValues, low) {
		if latamish {
			return subAcceptLatam, name + "=" + v + " is LATAM-ish (positive)"
		}
		return subAcceptGlobal, name + "=" + v + " is a positive default"
	}

	return subUnknown, "value not in allowed/positive list"
}

func containsFold(list []string, low string) bool {
	for _, v := range list {
		if strings.ToLower(strings.TrimSpace(v)) == low {
			return true
		}
	}
	return false
}

func flattenStrings(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringifyValue(item))
		}
		return out
	default:
		return []string{stringifyValue(value)}
	}
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// contentCheck implements §4.4.3.
func contentCheck(raw domain.RawPosting, cfg *filterconfig.FilterConfig, log *slog.Logger) (subVerdict, string) {
	body := raw.BodyText
	if body == "" {
		body = textutil.StripHTML(raw.BodyHTML)
	}
	text := strings.ToLower(strings.TrimSpace(raw.Title + " " + body))
	if text == "" || cfg == nil {
		return subUnknown, "no content or config"
	}

	ck := cfg.ContentKeywords
	lk := cfg.LocationKeywords
	negatives := dedupeStrings(append(append(append([]string{}, lk.StrongNegativeRestriction...), ck.StrongNegativeRegion...), ck.StrongNegativeTimezone...))

	if res := filter.DetectRestrictivePattern(text, negatives, log); res.IsRestrictive {
		return subReject, "restrictive pattern: " + res.MatchedKeyword
	}

	if verdict, reason, ok := contentContextualHit(text, ck.StrongPositiveLatam, negatives, domain.RegionLATAM, log); ok {
		return verdict, reason
	}
	if verdict, reason, ok := contentContextualHit(text, ck.StrongPositiveGlobal, negatives, domain.RegionGlobal, log); ok {
		return verdict, reason
	}
	if res := filter.ContainsInclusiveSignal(text, ck.AcceptExactBrazilTerms, log); res.IsInclusive {
		return subAcceptLatam, "ACCEPT_EXACT_BRAZIL_TERMS: " + res.MatchedKeyword
	}

	return subUnknown, "no content signal"
}

func contentContextualHit(text string, keywords, negatives []string, region domain.HiringRegion, log *slog.Logger) (subVerdict, string, bool) {
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		idxs := filter.FindAllIndexes(text, kw)
		if len(idxs) == 0 {
			continue
		}
		for _, idx := range idxs {
			window := filter.Window(text, idx[0], idx[1], contextWindowRadius)
			if res := filter.DetectRestrictivePattern(window, negatives, log); res.IsRestrictive {
				return subReject, "content hit '" + kw + "' near negative: " + res.MatchedKeyword, true
			}
		}
		verdict := subAcceptGlobal
		if region == domain.RegionLATAM {
			verdict = subAcceptLatam
		}
		return verdict, "content hit '" + kw + "'", true
	}
	return "", "", false
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
