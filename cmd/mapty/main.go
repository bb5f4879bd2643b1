package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"example.com/mapty/internal/config"
)

func main() {
	defaults := config.Load()
	app := &cli.App{
		Name:     "mapty",
		HelpName: "mapty",
		Usage:    "Log running and cycling workouts on a map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   defaults.LogLevel,
				Usage:   "zerolog level",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   defaults.StoreBackend,
				Usage:   "persistence backend: memory, file or postgres",
				EnvVars: []string{"STORE_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   defaults.DataDir,
				Usage:   "directory of the file store",
				EnvVars: []string{"DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "postgres-url",
				Value:   defaults.PostgresURL,
				Usage:   "postgres store DSN",
				EnvVars: []string{"POSTGRES_URL"},
			},
			&cli.StringSliceFlag{
				Name:    "kafka-broker",
				Usage:   "kafka broker address; none disables event publication",
				EnvVars: []string{"KAFKA_BROKERS"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			resetCommand(),
			tokenCommand(),
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			log.Error().Err(err).Msg(c.App.Name)
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			zerolog.DurationFieldUnit = time.Millisecond
			zerolog.DurationFieldInteger = false
			log.Logger = log.Output(
				zerolog.ConsoleWriter{
					Out:        c.App.ErrWriter,
					NoColor:    false,
					TimeFormat: time.RFC3339,
				},
			)
			return nil
		},
		Action: serve,
	}
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

// loadConfig layers command line flags over the environment.
func loadConfig(c *cli.Context) config.Config {
	cfg := config.Load()
	cfg.StoreBackend = c.String("store")
	cfg.DataDir = c.String("data-dir")
	cfg.PostgresURL = c.String("postgres-url")
	if c.IsSet("kafka-broker") {
		cfg.KafkaBrokers = splitBrokers(c.StringSlice("kafka-broker"))
	}
	if c.IsSet("address") {
		cfg.HTTPAddress = c.String("address")
	}
	if c.IsSet("zoom") {
		cfg.MapZoom = c.Int("zoom")
	}
	if c.IsSet("geolocation") {
		if coords, ok := config.ParseCoordinates(c.String("geolocation")); ok {
			cfg.Geolocation = &coords
		} else {
			log.Warn().Str("geolocation", c.String("geolocation")).Msg("ignoring malformed position")
		}
	}
	return cfg
}

func splitBrokers(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
