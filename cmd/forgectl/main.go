package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/config"
	"github.com/sakshamaitools/clash-point-forge/db"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	open := func(c *cli.Context) (*sqlx.DB, error) {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return db.Connect(cfg.DatabaseURL, 5*time.Second)
	}

	if err := newApp(open, os.Stdout, logger).Run(os.Args); err != nil {
		logger.Error("forgectl failed", slog.Any("error", err))
		os.Exit(1)
	}
}
