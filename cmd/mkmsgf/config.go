package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfigPath = "MKMSGF_CONFIG"

// Config represents the mkmsgf configuration file
// (~/.config/mkmsgf/config.yaml). Every value is a default that a
// command line flag overrides.
type Config struct {
	// Compile defaults
	Codepages []string `yaml:"codepages"`
	Language  string   `yaml:"language"`
	Include   string   `yaml:"include"`
	OutDir    string   `yaml:"out_dir"`
	Extension *bool    `yaml:"extension"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	CatalogDir    string `yaml:"catalog_dir"`
}

func configPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mkmsgf", "config.yaml")
}

// compileSettings holds the compile options a config file can default.
type compileSettings struct {
	codepages []string
	language  string
	include   string
	outDir    string
	extension bool
}

// applyCompileConfig applies config file defaults to compile settings
// when the corresponding flag was not set.
func applyCompileConfig(c *cli.Command, cfg Config, s *compileSettings) {
	if len(cfg.Codepages) > 0 && !c.IsSet("codepage") {
		s.codepages = append([]string(nil), cfg.Codepages...)
	}
	if cfg.Language != "" && !c.IsSet("lang") {
		s.language = cfg.Language
	}
	if cfg.Include != "" && !c.IsSet("include") {
		s.include = cfg.Include
	}
	if cfg.OutDir != "" && s.outDir == "" {
		s.outDir = cfg.OutDir
	}
	if cfg.Extension != nil && !c.IsSet("ext") {
		s.extension = *cfg.Extension
	}
}

// applyServeConfig applies config file defaults to serve settings.
func applyServeConfig(c *cli.Command, cfg Config, addr, dir *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.CatalogDir != "" && !c.IsSet("dir") {
		*dir = cfg.CatalogDir
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	cfg, _ := loadConfigFile(configPath())
	return cfg
}

func loadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
