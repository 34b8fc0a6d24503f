package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"jobingest/internal/domain"
)

// sourceFile is the YAML shape of config/sources.yml: the operator-owned
// list of ATS boards to poll. Regrounded on SourceDescriptor in place of
// the teacher's Sources{Greenhouse,Lever} struct (§6, Configuration).
type sourceFile struct {
	Sources []struct {
		Kind        string         `yaml:"kind"`
		DisplayName string         `yaml:"displayName"`
		CompanyID   *int64         `yaml:"companyId"`
		Config      map[string]any `yaml:"config"`
		Enabled     *bool          `yaml:"enabled"`
	} `yaml:"sources"`
}

// LoadSources reads config/sources.yml into SourceDescriptors. A source
// with no explicit `enabled` key defaults to enabled, matching operator
// expectation that listing a board means polling it.
func LoadSources(path string) ([]domain.SourceDescriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f sourceFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	out := make([]domain.SourceDescriptor, 0, len(f.Sources))
	for _, s := range f.Sources {
		enabled := true
		if s.Enabled != nil {
			enabled = *s.Enabled
		}
		out = append(out, domain.SourceDescriptor{
			Kind:        domain.SourceKind(s.Kind),
			DisplayName: s.DisplayName,
			CompanyID:   s.CompanyID,
			Config:      s.Config,
			Enabled:     enabled,
		})
	}
	return out, nil
}
