package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/db"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/services"
	"github.com/urfave/cli/v2"
)

// opener opens the database the commands operate on.
type opener func(c *cli.Context) (*sqlx.DB, error)

func newApp(open opener, out io.Writer, logger *slog.Logger) *cli.App {
	return &cli.App{
		Name:  "forgectl",
		Usage: "administer tournament brackets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the YAML config file"},
		},
		Commands: []*cli.Command{
			migrateCommand(open, out),
			bracketCommand(open, out, logger),
			matchCommand(open, out, logger),
			standingsCommand(open, out, logger),
		},
	}
}

func migrateCommand(open opener, out io.Writer) *cli.Command {
	// withMigrator закрывает migrate вместе с соединением
	withMigrator := func(c *cli.Context, fn func(m *migrate.Migrate) error) error {
		conn, err := open(c)
		if err != nil {
			return err
		}
		m, err := db.NewMigrator(conn)
		if err != nil {
			conn.Close()
			return err
		}
		defer m.Close()
		return fn(m)
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrate) error {
						if err := m.Up(); err != nil {
							if errors.Is(err, migrate.ErrNoChange) {
								fmt.Fprintln(out, "No new migrations to run")
								return nil
							}
							return err
						}
						fmt.Fprintln(out, "Migrations applied")
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrate) error {
						if err := m.Steps(-1); err != nil {
							return err
						}
						fmt.Fprintln(out, "Rolled back one migration")
						return nil
					})
				},
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *migrate.Migrate) error {
						version, dirty, err := m.Version()
						if errors.Is(err, migrate.ErrNilVersion) {
							fmt.Fprintln(out, "No migrations applied")
							return nil
						}
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "Version %d (dirty: %t)\n", version, dirty)
						return nil
					})
				},
			},
		},
	}
}

func bracketCommand(open opener, out io.Writer, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "bracket",
		Usage: "generate or inspect a tournament bracket",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "build the bracket of an open tournament",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tournament", Required: true},
					&cli.StringFlag{Name: "format", Usage: "must match the tournament's format when set"},
				},
				Action: func(c *cli.Context) error {
					return withDeps(c, open, logger, func(deps services.Deps) error {
						id, err := uuidFlag(c, "tournament")
						if err != nil {
							return err
						}
						matches, err := services.NewBracketService(deps).GenerateBracket(c.Context, id, models.TournamentFormat(c.String("format")))
						if err != nil {
							return err
						}
						return printJSON(out, map[string]interface{}{"matches": matches})
					})
				},
			},
			{
				Name:  "show",
				Usage: "print the bracket grouped by round",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tournament", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withDeps(c, open, logger, func(deps services.Deps) error {
						id, err := uuidFlag(c, "tournament")
						if err != nil {
							return err
						}
						view, err := services.NewBracketService(deps).GetBracket(c.Context, id)
						if err != nil {
							return err
						}
						return printJSON(out, view)
					})
				},
			},
		},
	}
}

func matchCommand(open opener, out io.Writer, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "record match results",
		Subcommands: []*cli.Command{
			{
				Name:  "declare",
				Usage: "declare the winner of a match and advance the bracket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "match", Required: true},
					&cli.StringFlag{Name: "winner", Required: true, Usage: "participant id"},
				},
				Action: func(c *cli.Context) error {
					return withDeps(c, open, logger, func(deps services.Deps) error {
						matchID, err := uuidFlag(c, "match")
						if err != nil {
							return err
						}
						winnerID, err := uuidFlag(c, "winner")
						if err != nil {
							return err
						}
						match, err := services.NewMatchService(deps).DeclareWinner(c.Context, matchID, winnerID)
						if err != nil {
							return err
						}
						return printJSON(out, map[string]interface{}{"match": match})
					})
				},
			},
		},
	}
}

func standingsCommand(open opener, out io.Writer, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print tournament standings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tournament", Required: true},
		},
		Action: func(c *cli.Context) error {
			return withDeps(c, open, logger, func(deps services.Deps) error {
				id, err := uuidFlag(c, "tournament")
				if err != nil {
					return err
				}
				standings, err := services.NewStandingsService(deps).GetStandings(c.Context, id)
				if err != nil {
					return err
				}
				return printJSON(out, map[string]interface{}{"standings": standings})
			})
		},
	}
}

func withDeps(c *cli.Context, open opener, logger *slog.Logger, fn func(deps services.Deps) error) error {
	conn, err := open(c)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(services.NewDeps(conn, logger))
}

func uuidFlag(c *cli.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s must be a UUID: %w", name, err)
	}
	return id, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
