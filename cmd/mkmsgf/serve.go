package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mkmsgf/internal/api"
	"github.com/samcharles93/mkmsgf/internal/logger"
)

func serveCmd(env *runEnv) *cli.Command {
	var (
		addr        string
		dir         string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve message lookups from a directory of catalogs",
		Before: env.setupLogging,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "directory containing .msg catalogs",
				Value:       ".",
				Destination: &dir,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, env.cfg, &addr, &dir)

			store := api.NewCatalogStore(dir)
			defer func() { _ = store.Close() }()
			server := api.NewServer(store, log)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "catalogs", store.Dir())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
