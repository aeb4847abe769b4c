package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/secmon-lab/incidex/pkg/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		slog.Error("incidex failed", "error", err)
		os.Exit(1)
	}
}
