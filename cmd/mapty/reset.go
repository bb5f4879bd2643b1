package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"example.com/mapty/internal/auth"
	"example.com/mapty/internal/events"
	"example.com/mapty/internal/persistence"
)

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "delete every persisted workout; running servers keep theirs until POST /v1/reset or restart",
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)
			store, closeStore, err := openStore(c.Context, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := persistence.NewRepository(store, cfg.StorageKey).Clear(c.Context); err != nil {
				return err
			}

			publisher := newPublisher(cfg)
			defer publisher.Close()
			if err := publisher.Publish(c.Context, events.Event{
				Type:    events.TypeWorkoutsReset,
				Payload: events.WorkoutsReset{OccurredAt: time.Now().UTC()},
			}); err != nil {
				log.Error().Err(err).Msg("publish reset event")
			}
			log.Info().Str("store", cfg.StoreBackend).Str("key", cfg.StorageKey).Msg("workouts reset")
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for POST /v1/reset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "subject",
				Value: "operator",
				Usage: "token subject",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Value: time.Hour,
				Usage: "token lifetime",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)
			token, err := auth.Issue(authConfig(cfg), c.String("subject"), []string{auth.ScopeWorkoutsReset}, c.Duration("ttl"), time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, token)
			return err
		},
	}
}
