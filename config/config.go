package config

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"
)

type Config struct {
	Name             string
	InputConfig      InputConfig       `toml:"input"`
	OutputConfig     OutputConfig      `toml:"output"`
	TransformsConfig []TransformConfig `toml:"transforms"`
	// Verify re-parses every rendered insert before it is written.
	Verify      bool   `toml:"verify"`
	SkipInvalid bool   `toml:"skip-invalid"`
	MetaDb      string `toml:"meta-db"`
	FileName    *string
}

type InputConfig struct {
	Type   string                 `toml:"type"`
	Config map[string]interface{} `toml:"config"`
}

type OutputConfig struct {
	Type   string                 `toml:"type"`
	Config map[string]interface{} `toml:"config"`
}

type TransformConfig struct {
	Type   string                 `toml:"type"`
	Config map[string]interface{} `toml:"config"`
}

// NewConfig reads a toml app config.
func NewConfig(fileName string) (c *Config, err error) {
	c = &Config{}
	fileNamePath, err := filepath.Abs(fileName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	c.FileName = &fileNamePath
	if err = c.ReadConfig(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) ReadConfig() error {
	if _, err := toml.DecodeFile(*c.FileName, c); err != nil {
		return errors.Annotatef(err, "read config %s", *c.FileName)
	}
	return nil
}

// Validate fills defaults and rejects configs that cannot run.
func (c *Config) Validate() error {
	if c.Name == "" {
		c.Name = "qin-mask"
	}
	if c.InputConfig.Type == "" {
		c.InputConfig.Type = "file"
	}
	if c.OutputConfig.Type == "" {
		c.OutputConfig.Type = "stdout"
	}
	if c.InputConfig.Config == nil {
		c.InputConfig.Config = map[string]interface{}{}
	}
	if c.OutputConfig.Config == nil {
		c.OutputConfig.Config = map[string]interface{}{}
	}
	for i, tc := range c.TransformsConfig {
		if tc.Type == "" {
			return errors.NotValidf("transforms[%d] without type", i)
		}
	}
	return nil
}
