package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the svdmax configuration file
// (~/.config/svdmax/config.yaml).  Numeric fields are pointers so we can
// distinguish "not set" from zero values.
type Config struct {
	WeightsPath  string `yaml:"weights_path"`
	WeightTensor string `yaml:"weight_tensor"`
	BiasTensor   string `yaml:"bias_tensor"`

	PreviewRank *int64 `yaml:"preview_rank"`
	Budget      *int64 `yaml:"budget"`

	ServerAddress string `yaml:"server_address"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "svdmax", "config.yaml")
}

func loadConfig() Config {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	_ = yaml.Unmarshal(data, &cfg)
	return cfg
}

// applyConfig fills in config-file defaults for flags the user did not set
// on the command line.
func applyConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.WeightsPath != "" && !c.IsSet("weights") {
		weightsPath = cfg.WeightsPath
	}
	if cfg.WeightTensor != "" && !c.IsSet("weight-tensor") {
		weightTensor = cfg.WeightTensor
	}
	if cfg.BiasTensor != "" && !c.IsSet("bias-tensor") {
		biasTensor = cfg.BiasTensor
	}
	if cfg.PreviewRank != nil && !c.IsSet("preview-rank") {
		previewRank = *cfg.PreviewRank
	}
	if cfg.Budget != nil && !c.IsSet("budget") {
		budget = *cfg.Budget
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if addr != nil && cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
