package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Display holds the badge configuration file location
type Display struct {
	Path string
}

// Flags returns CLI flags for Display configuration
func (d *Display) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "display-config",
			Usage:       "YAML file overriding severity and category badges",
			Category:    "Display",
			Sources:     cli.EnvVars("INCIDEX_DISPLAY_CONFIG"),
			Destination: &d.Path,
		},
	}
}

// Configure returns the built-in badges, overridden by the file when set
func (d *Display) Configure() (*model.DisplayConfig, error) {
	if d.Path == "" {
		return model.DefaultDisplayConfig(), nil
	}

	override, err := LoadDisplayFromFile(d.Path)
	if err != nil {
		return nil, err
	}

	merged := model.DefaultDisplayConfig().Merge(override)
	if err := merged.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid display configuration",
			goerr.V("path", d.Path))
	}
	return merged, nil
}

// LogValue returns structured log value
func (d Display) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", d.Path),
	)
}

// LoadDisplayFromFile reads a display override file. Entries are validated
// individually; completeness is checked after merging with the defaults.
func LoadDisplayFromFile(path string) (*model.DisplayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "display configuration file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read display configuration file",
			goerr.V("path", path))
	}

	var cfg model.DisplayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML configuration",
			goerr.V("path", path))
	}

	for i, sev := range cfg.Severities {
		if err := sev.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid severity",
				goerr.V("path", path), goerr.V("index", i))
		}
	}
	for i, cat := range cfg.Categories {
		if err := cat.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid category",
				goerr.V("path", path), goerr.V("index", i))
		}
	}

	return &cfg, nil
}
