package config

import (
	"fmt"
	"sort"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) errf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) warnf(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a copy of cfg plus validation messages.
// The copy is not rewritten: blank keywords are ignored when a rule is
// checked but stay in the returned rules, and nothing is trimmed or
// de-duplicated.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	ruleOk := func(r Rule) (ok bool, warnings []string) {
		if strings.TrimSpace(r.Tag) == "" {
			return false, []string{"rule missing tag"}
		}
		if len(r.Any) == 0 {
			return false, []string{fmt.Sprintf("rule tag=%q has empty any[]", r.Tag)}
		}
		var cleaned []string
		for _, a := range r.Any {
			a = strings.TrimSpace(a)
			if a != "" {
				cleaned = append(cleaned, a)
			}
		}
		if len(cleaned) == 0 {
			return false, []string{fmt.Sprintf("rule tag=%q any[] only contains blanks", r.Tag)}
		}
		return true, warnings
	}

	checkRules := func(name string, rules []Rule) {
		for i, r := range rules {
			ok, warns := ruleOk(r)
			if !ok {
				res.errf("%s[%d] invalid (tag=%q)", name, i, r.Tag)
			}
			for _, w := range warns {
				res.warnf("%s[%d]: %s", name, i, w)
			}
		}
	}

	if strings.TrimSpace(out.App.DataDir) == "" {
		res.errf("app.data_dir must not be empty")
	}
	if strings.TrimSpace(out.App.DBPath) == "" {
		res.errf("app.db_path must not be empty")
	}
	if strings.TrimSpace(out.FilterConfigDir) == "" {
		res.errf("filter_config_dir must not be empty")
	}

	checkRules("scoring.skill_rules", out.Scoring.SkillRules)
	checkRules("scoring.job_type_rules", out.Scoring.JobTypeRules)
	checkRules("scoring.experience_rules", out.Scoring.ExperienceRules)

	if len(out.Scoring.SkillRules) == 0 {
		res.warnf("no skill rules configured; canonical postings will carry an empty skills set")
	}

	sort.Strings(res.Errors)
	sort.Strings(res.Warnings)

	return out, res
}
