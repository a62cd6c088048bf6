package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/EricBell/accessible-outings/internal/cache"
	"github.com/EricBell/accessible-outings/internal/config"
	"github.com/EricBell/accessible-outings/internal/events"
	"github.com/EricBell/accessible-outings/internal/geo"
	"github.com/EricBell/accessible-outings/internal/geocoding"
	httpserver "github.com/EricBell/accessible-outings/internal/interfaces/http"
	"github.com/EricBell/accessible-outings/internal/interfaces/http/handlers"
	"github.com/EricBell/accessible-outings/internal/persistence/postgres"
	"github.com/EricBell/accessible-outings/internal/places"
)

const shutdownGrace = 10 * time.Second

func serveCmd(ctx context.Context, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	venues := postgres.NewVenueRepo(db, cfg.Database.QueryTimeout)
	categories := postgres.NewCategoryRepo(db, cfg.Database.QueryTimeout)
	favorites := postgres.NewFavoriteRepo(db, cfg.Database.QueryTimeout)
	reviews := postgres.NewReviewRepo(db, cfg.Database.QueryTimeout)
	history := postgres.NewSearchHistoryRepo(db, cfg.Database.QueryTimeout)
	eventRepo := postgres.NewEventRepo(db, cfg.Database.QueryTimeout)
	users := postgres.NewUserRepo(db, cfg.Database.QueryTimeout)

	defaultPt := geo.Point{
		Latitude:  cfg.App.DefaultLatitude,
		Longitude: cfg.App.DefaultLongitude,
	}
	geocoder := geocoding.New(cfg.Places, defaultPt, c)
	searcher := places.NewSearchService(places.NewClient(cfg.Places, c), venues, categories)

	var provider events.Provider
	if cfg.Events.Enabled {
		provider = events.NewEventbrite(cfg.Events)
	} else {
		log.Info().Msg("event provider disabled, serving stored events only")
	}
	aggregator := events.NewAggregator(eventRepo, venues, provider)

	h := handlers.New(handlers.Deps{
		Config:     cfg,
		Geocoder:   geocoder,
		Searcher:   searcher,
		Events:     aggregator,
		Cache:      c,
		DB:         db,
		Venues:     venues,
		Categories: categories,
		Favorites:  favorites,
		Reviews:    reviews,
		History:    history,
		Users:      users,
	})

	server := httpserver.NewServer(cfg.Server, h, c)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
