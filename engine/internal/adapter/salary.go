package adapter

import (
	"regexp"
	"strconv"
	"strings"
)

// salaryRangeRe matches "$120,000 - $150,000", "120000-150000 USD",
// "€50k to €70k", etc. Grounded on the teacher's compensation-string
// handling in rank.YAMLScorer (keyword/number extraction via regexp),
// generalized here to a currency-symbol + amount pair.
var salaryRangeRe = regexp.MustCompile(`(?i)([$€£]|USD|EUR|GBP|BRL|R\$)?\s*([\d,.]+)\s*(k)?\s*(?:-|to|–)\s*([$€£]|USD|EUR|GBP|BRL|R\$)?\s*([\d,.]+)\s*(k)?\s*([A-Za-z]{3})?`)

var currencySymbols = map[string]string{
	"$": "USD", "USD": "USD",
	"€": "EUR", "EUR": "EUR",
	"£": "GBP", "GBP": "GBP",
	"R$": "BRL", "BRL": "BRL",
}

var cycleKeywords = []struct {
	keyword string
	cycle   string
}{
	{"hour", "hourly"},
	{"/hr", "hourly"},
	{"month", "monthly"},
	{"year", "yearly"},
	{"annum", "yearly"},
	{"annual", "yearly"},
}

// ParseSalary extracts a salary range, currency, and pay cycle from free-form
// compensation text, per §4.6 step 2. Returns zero values (nil min/max,
// empty currency/cycle) when nothing recognizable is present — a parsing
// miss is not an error, just an absent field.
func ParseSalary(text string) (min, max *float64, currency, cycle string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, "", ""
	}

	m := salaryRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, "", ""
	}

	loVal, ok := parseAmount(m[2], m[3] != "")
	if !ok {
		return nil, nil, "", ""
	}
	hiVal, ok := parseAmount(m[5], m[6] != "")
	if !ok {
		return nil, nil, "", ""
	}

	sym := firstNonEmpty(m[1], m[4], m[7])
	if code, ok := currencySymbols[strings.ToUpper(sym)]; ok {
		currency = code
	} else if sym != "" {
		currency = strings.ToUpper(sym)
	}

	cycle = cycleFor(text)

	return &loVal, &hiVal, currency, cycle
}

func parseAmount(raw string, thousands bool) (float64, bool) {
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if thousands {
		v *= 1000
	}
	return v, true
}

func cycleFor(text string) string {
	lower := strings.ToLower(text)
	for _, ck := range cycleKeywords {
		if strings.Contains(lower, ck.keyword) {
			return ck.cycle
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
