package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileEnvVar = "FINTRACK_CONFIG"

// File mirrors ~/.fintrack/config.yaml. Every field is optional.
type File struct {
	APIURL       string `yaml:"api_url"`
	AppName      string `yaml:"app_name"`
	Env          string `yaml:"env"`
	DataDir      string `yaml:"data_dir"`
	CallbackPort string `yaml:"callback_port"`

	Storage      string `yaml:"storage"`
	ValkeyAddr   string `yaml:"valkey_addr"`
	ValkeyPrefix string `yaml:"valkey_prefix"`

	RefreshMaxTries string `yaml:"refresh_max_tries"`
	HTTPTimeout     string `yaml:"http_timeout"`
	HTTPCache       string `yaml:"http_cache"`
	CoalesceRefresh string `yaml:"coalesce_refresh"`
}

// DefaultFilePath returns $FINTRACK_CONFIG or ~/.fintrack/config.yaml
func DefaultFilePath() string {
	if p := os.Getenv(configFileEnvVar); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fintrack", "config.yaml")
}

func readFile(path string) (*File, error) {
	f := &File{}
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return f, nil
}

type sources struct {
	file      *File
	overrides *File
}

// lookup resolves a value in precedence order: override, environment, file, default.
func (s *sources) lookup(override, envVar, fileValue, defaultValue string) string {
	if override != "" {
		return override
	}
	if fileValue != "" {
		defaultValue = fileValue
	}
	return GetEnv(envVar, defaultValue)
}
