package cli

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

func formatFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "Output format (ascii, markdown)",
		Value:       "ascii",
		Destination: dst,
	}
}

func incidentIDArg(c *cli.Command) (types.IncidentID, error) {
	id := types.IncidentID(c.Args().First())
	if id.IsEmpty() {
		return "", goerr.New("incident ID argument is required")
	}
	return id, nil
}
