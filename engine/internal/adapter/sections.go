package adapter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobingest/internal/textutil"
)

// headingPatterns maps a canonical section name to the EN+PT heading text
// (case-insensitive) that introduces it, per §4.6 step 2.
var headingPatterns = map[string][]string{
	"requirements":     {"requirements", "qualifications", "requisitos", "qualificações"},
	"responsibilities": {"responsibilities", "what you'll do", "responsabilidades", "atribuições"},
	"benefits":         {"benefits", "perks", "benefícios"},
}

var headingSelector = "h1,h2,h3,h4,h5,h6,strong,b,p > strong,p > b"

// ExtractSections splits a posting's description HTML into requirements,
// responsibilities, and benefits by heading-matching. Grounded on the
// teacher's goquery selector-candidate pattern
// (internal/scrape/util/location.go::FindLocation), generalized from a
// fixed CSS-selector list to a heading-text match across headings and
// bolded lead-ins.
func ExtractSections(html string) (requirements, responsibilities, benefits string) {
	if strings.TrimSpace(html) == "" {
		return "", "", ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", ""
	}

	out := map[string]*strings.Builder{
		"requirements":     {},
		"responsibilities": {},
		"benefits":         {},
	}

	headings := doc.Find(headingSelector)
	headings.Each(func(i int, h *goquery.Selection) {
		section := sectionFor(textutil.NormalizeForDeduplication(h.Text()))
		if section == "" {
			return
		}

		var body strings.Builder
		for sib := h.Parent().Next(); sib.Length() > 0; sib = sib.Next() {
			if isHeadingLike(sib) {
				break
			}
			body.WriteString(strings.TrimSpace(sib.Text()))
			body.WriteString("\n")
		}
		if body.Len() == 0 {
			for sib := h.Next(); sib.Length() > 0; sib = sib.Next() {
				if isHeadingLike(sib) {
					break
				}
				body.WriteString(strings.TrimSpace(sib.Text()))
				body.WriteString("\n")
			}
		}

		out[section].WriteString(strings.TrimSpace(body.String()))
		out[section].WriteString("\n")
	})

	return strings.TrimSpace(out["requirements"].String()),
		strings.TrimSpace(out["responsibilities"].String()),
		strings.TrimSpace(out["benefits"].String())
}

func isHeadingLike(s *goquery.Selection) bool {
	tag := goquery.NodeName(s)
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	default:
		return false
	}
}

var nonAlnumRe = regexp.MustCompile(`[^a-z ]+`)

func sectionFor(normalizedHeading string) string {
	clean := strings.TrimSpace(nonAlnumRe.ReplaceAllString(normalizedHeading, " "))
	for section, needles := range headingPatterns {
		for _, n := range needles {
			if strings.Contains(clean, strings.TrimSpace(nonAlnumRe.ReplaceAllString(n, " "))) {
				return section
			}
		}
	}
	return ""
}
