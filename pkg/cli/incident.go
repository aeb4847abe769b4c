package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// ErrValidation is returned when command input fails the form rules. The
// field messages have already been printed.
var ErrValidation = goerr.New("input validation failed")

func cmdList(r *runner) *cli.Command {
	var (
		filter model.Filter
		format string
	)

	return &cli.Command{
		Name:  "list",
		Usage: "Fetch and print incidents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "Substring of title, description or affected service",
				Destination: &filter.Query,
			},
			&cli.StringFlag{
				Name:        "severity",
				Usage:       "Severity label, e.g. High",
				Destination: &filter.Severity,
			},
			&cli.StringFlag{
				Name:        "category",
				Usage:       "Category label, e.g. database",
				Destination: &filter.Category,
			},
			formatFlag(&format),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			store, _, err := r.newStore()
			if err != nil {
				return err
			}
			defer store.Wait()

			if err := store.Refresh(ctx); err != nil {
				return goerr.Wrap(err, "failed to fetch incidents")
			}

			all := store.Snapshot().Incidents
			ctxlog.From(ctx).Debug("incidents fetched", "total", len(all), "filter", filter)

			if err := renderIncidentList(r.out, filter.Apply(all), r.display, f); err != nil {
				return err
			}
			return renderStats(r.out, model.NewStats(all), f)
		},
	}
}

func cmdShow(r *runner) *cli.Command {
	var format string

	return &cli.Command{
		Name:      "show",
		Usage:     "Print one incident",
		ArgsUsage: "ID",
		Flags:     []cli.Flag{formatFlag(&format)},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := incidentIDArg(c)
			if err != nil {
				return err
			}
			f, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			store, _, err := r.newStore()
			if err != nil {
				return err
			}
			defer store.Wait()

			x, err := store.Load(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch incident", goerr.V("id", id))
			}
			return renderIncident(r.out, x, r.display, f)
		},
	}
}

func cmdCreate(r *runner) *cli.Command {
	var (
		draft  model.Draft
		format string
	)

	return &cli.Command{
		Name:  "create",
		Usage: "Submit a new incident for triage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Usage:       "Brief description of the incident",
				Destination: &draft.Title,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "What happened, its impact and any error messages",
				Destination: &draft.Description,
			},
			&cli.StringFlag{
				Name:        "service",
				Usage:       "Affected service, e.g. user-api",
				Destination: &draft.AffectedService,
			},
			formatFlag(&format),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			if errs := model.ValidateDraft(draft); errs.HasErrors() {
				if err := renderFieldErrors(r.out, errs); err != nil {
					return err
				}
				return goerr.Wrap(ErrValidation, "invalid incident", goerr.V("fields", errs.Fields()))
			}

			store, _, err := r.newStore()
			if err != nil {
				return err
			}
			defer store.Wait()

			created, err := store.Create(ctx, draft)
			if err != nil {
				return goerr.Wrap(err, "failed to create incident")
			}
			return renderIncident(r.out, created, r.display, f)
		},
	}
}

func cmdUpdate(r *runner) *cli.Command {
	var format string

	return &cli.Command{
		Name:      "update",
		Usage:     "Change fields of an incident",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "New title"},
			&cli.StringFlag{Name: "description", Usage: "New description"},
			&cli.StringFlag{Name: "service", Usage: "New affected service"},
			formatFlag(&format),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := incidentIDArg(c)
			if err != nil {
				return err
			}
			f, err := parseOutputFormat(format)
			if err != nil {
				return err
			}

			patch := patchFromFlags(c)
			if patch.IsEmpty() {
				return goerr.New("at least one of --title, --description or --service is required")
			}
			if errs := model.ValidatePatch(patch); errs.HasErrors() {
				if err := renderFieldErrors(r.out, errs); err != nil {
					return err
				}
				return goerr.Wrap(ErrValidation, "invalid update", goerr.V("fields", errs.Fields()))
			}

			store, _, err := r.newStore()
			if err != nil {
				return err
			}
			defer store.Wait()

			updated, err := store.Update(ctx, id, patch)
			if err != nil {
				return goerr.Wrap(err, "failed to update incident", goerr.V("id", id))
			}
			return renderIncident(r.out, updated, r.display, f)
		},
	}
}

// patchFromFlags sets only the flags given on the command line, so an
// explicit empty value is still validated
func patchFromFlags(c *cli.Command) model.Patch {
	var patch model.Patch
	if c.IsSet("title") {
		v := c.String("title")
		patch.Title = &v
	}
	if c.IsSet("description") {
		v := c.String("description")
		patch.Description = &v
	}
	if c.IsSet("service") {
		v := c.String("service")
		patch.AffectedService = &v
	}
	return patch
}

func cmdDelete(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an incident",
		ArgsUsage: "ID",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := incidentIDArg(c)
			if err != nil {
				return err
			}
			store, _, err := r.newStore()
			if err != nil {
				return err
			}
			defer store.Wait()

			if err := store.Remove(ctx, id); err != nil {
				return goerr.Wrap(err, "failed to delete incident", goerr.V("id", id))
			}
			_, err = fmt.Fprintf(r.out, "Incident %s deleted\n", id)
			return err
		},
	}
}

func cmdHealth(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Print the backend health response",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, api, err := r.newStore()
			if err != nil {
				return err
			}

			health, err := api.Health(ctx)
			if err != nil {
				return goerr.Wrap(err, "backend health check failed")
			}

			enc := json.NewEncoder(r.out)
			enc.SetIndent("", "  ")
			return enc.Encode(health)
		},
	}
}
