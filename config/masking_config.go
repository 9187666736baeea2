package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

type Pattern struct {
	Name  string `yaml:"name" toml:"name" mapstructure:"name"`
	Regex string `yaml:"regex" toml:"regex" mapstructure:"regex"`
}

// MaskingConfig decides which insert values are PII and how each one is
// replaced.
type MaskingConfig struct {
	Columns  []string          `yaml:"columns" toml:"columns" mapstructure:"columns"`
	Patterns []Pattern         `yaml:"patterns" toml:"patterns" mapstructure:"patterns"`
	Rules    map[string]string `yaml:"rules" toml:"rules" mapstructure:"rules"`
	// CaseInsensitive folds case when comparing column names.
	CaseInsensitive bool `yaml:"case_insensitive" toml:"case_insensitive" mapstructure:"case-insensitive"`
	// Salt feeds the default seeder so two runs with different salts
	// produce different substitutes.
	Salt string `yaml:"salt" toml:"salt" mapstructure:"salt"`
}

// LoadMaskingConfig reads a toml file when the extension says so and yaml
// otherwise.
func LoadMaskingConfig(path string) (*MaskingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "read masking config %s", path)
	}
	c := &MaskingConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "decode masking config %s", path)
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *MaskingConfig) Validate() error {
	for i, p := range c.Patterns {
		if p.Regex == "" {
			return errors.NotValidf("patterns[%d] without regex", i)
		}
		if _, err := regexp.Compile(p.Regex); err != nil {
			return errors.Annotatef(err, "patterns[%d] %s", i, p.Name)
		}
	}
	for key, rule := range c.Rules {
		if strings.TrimSpace(rule) == "" {
			return errors.NotValidf("rule %s without generator", key)
		}
	}
	return nil
}
