package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"example.com/mapty/internal/api"
	"example.com/mapty/internal/app"
	"example.com/mapty/internal/auth"
	"example.com/mapty/internal/events"
	"example.com/mapty/internal/mapview"
	"example.com/mapty/internal/mapview/leaflet"
	"example.com/mapty/internal/persistence"
	httptransport "example.com/mapty/internal/transport/http"
)

const (
	eventQueueSize       = 256
	eventDeliveryTimeout = 10 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the map and workout list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Usage:   "listen address",
				EnvVars: []string{"HTTP_ADDRESS"},
			},
			&cli.IntFlag{
				Name:    "zoom",
				Usage:   "default map zoom level",
				EnvVars: []string{"MAP_ZOOM_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "geolocation",
				Usage:   "fixed lat,lng used instead of asking the browser",
				EnvVars: []string{"GEOLOCATION"},
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg := loadConfig(c)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var geolocator mapview.Geolocator = mapview.NewBrowserGeolocator()
	if cfg.Geolocation != nil {
		geolocator = mapview.StaticGeolocator{Position: cfg.Geolocation}
	}

	scene := leaflet.NewScene(cfg.MapTileURL)
	notices := &app.NoticeBoard{}
	controller := app.New(ctx, app.Deps{
		Repository: persistence.NewRepository(store, cfg.StorageKey),
		Map:        scene,
		Geolocator: geolocator,
		Publisher:  events.NewQueue(newPublisher(cfg), eventQueueSize, eventDeliveryTimeout),
		Notifier:   notices,
		MapConfig:  mapview.Config{Zoom: cfg.MapZoom, PanDuration: cfg.MapPanDuration},
		FormDelay:  cfg.FormReenableDelay,
	})
	defer func() {
		if err := controller.Close(); err != nil {
			log.Warn().Err(err).Msg("close controller")
		}
	}()
	controller.Start()

	router := httptransport.NewRouter(cfg.AllowedOrigins)
	api.NewHandler(controller, scene, notices, sessions.NewCookieStore([]byte(cfg.SessionKey))).
		RegisterRoutes(router, auth.NewMiddleware(authConfig(cfg)))

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, router)

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Info().Str("address", cfg.HTTPAddress).Str("store", cfg.StoreBackend).Msg("serving")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}
