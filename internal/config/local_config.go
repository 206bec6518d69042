package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml read straight from a project
// directory without going through the viper singleton, for instance when
// init runs before Initialize has found the project.
type LocalConfig struct {
	DB            string `yaml:"db"`
	TemplatesFile string `yaml:"templates-file"`
	Archive       struct {
		After string `yaml:"after"`
	} `yaml:"archive"`
}

// LoadLocalConfig parses config.yaml in dir.
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't be parsed.
func LoadLocalConfig(dir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml")) // #nosec G304 - config file path from project dir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}
