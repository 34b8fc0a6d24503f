// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is one keyword-detection rule: if any of Any appears in the text
// under test, Tag applies. Mirrors the teacher's scoring Rule shape,
// generalized from a weighted score contribution to a tag-set membership
// test (internal/adapter uses Tag, ignores Weight).
type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir" json:"data_dir"`
		DBPath  string `yaml:"db_path" json:"db_path"`
	} `yaml:"app" json:"app"`

	FilterConfigDir string `yaml:"filter_config_dir" json:"filter_config_dir"`

	Scoring struct {
		SkillRules      []Rule `yaml:"skill_rules" json:"skill_rules"`
		JobTypeRules    []Rule `yaml:"job_type_rules" json:"job_type_rules"`
		ExperienceRules []Rule `yaml:"experience_rules" json:"experience_rules"`
	} `yaml:"scoring" json:"scoring"`
}

func Load(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "./data"
	}
	if cfg.App.DBPath == "" {
		cfg.App.DBPath = cfg.App.DataDir + "/jobingest.db"
	}
	if cfg.FilterConfigDir == "" {
		cfg.FilterConfigDir = "./config"
	}

	return cfg, nil
}
