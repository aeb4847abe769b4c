package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/service/backend"
	"github.com/urfave/cli/v3"
)

// Backend holds the triage backend connection settings
type Backend struct {
	URL     string
	Timeout time.Duration
}

// Flags returns CLI flags for Backend configuration
func (b *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "Base URL of the incident triage API",
			Category:    "Backend",
			Value:       backend.DefaultBaseURL,
			Sources:     cli.EnvVars("INCIDEX_API_URL"),
			Destination: &b.URL,
		},
		&cli.DurationFlag{
			Name:        "api-timeout",
			Usage:       "Timeout for each API request",
			Category:    "Backend",
			Value:       backend.DefaultTimeout,
			Sources:     cli.EnvVars("INCIDEX_API_TIMEOUT"),
			Destination: &b.Timeout,
		},
	}
}

// Configure creates the API client
func (b *Backend) Configure() (*backend.Client, error) {
	if b.Timeout <= 0 {
		return nil, goerr.New("API timeout must be positive", goerr.V("timeout", b.Timeout))
	}
	client, err := backend.New(b.URL, backend.WithTimeout(b.Timeout))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend configuration")
	}
	return client, nil
}

// LogValue returns structured log value
func (b Backend) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", b.URL),
		slog.Duration("timeout", b.Timeout),
	)
}
