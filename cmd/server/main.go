package main

import (
	"context"
	"database/sql"
	"net/http"
	"tapas-route-service/internal/adapters/cache"
	"tapas-route-service/internal/adapters/distance"
	"tapas-route-service/internal/adapters/repositories"
	"tapas-route-service/internal/api"
	"tapas-route-service/internal/config"
	"tapas-route-service/internal/platform/db"
	"tapas-route-service/internal/platform/obs"
	"tapas-route-service/internal/ports"
	"tapas-route-service/internal/services"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cached ORS durations are refreshed weekly.
const distanceCacheTTL = 7 * 24 * time.Hour

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	obs.SetupLogger(cfg.LogFormat, cfg.Debug)
	if envErr != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	ctx := context.Background()

	var (
		conn *sql.DB
		repo ports.VenueRepository
	)
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer conn.Close()
		repo = repositories.NewPostgresVenueRepository(conn)
	} else {
		// Local runs without Postgres serve the seed catalog from memory.
		venues, err := repositories.LoadSeedFile(cfg.SeedPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load seed catalog")
		}
		log.Warn().Str("seed", cfg.SeedPath).Int("venues", len(venues)).Msg("DATABASE_URL not set, serving seed catalog from memory")
		repo = repositories.NewMemoryVenueRepository(venues)
	}

	model, err := newDistanceModel(cfg, conn)
	if err != nil {
		log.Fatal().Err(err).Msg("configure distance model")
	}

	optimizer, err := services.NewOptimizer(services.OptimizerOptions{
		ExactThreshold: cfg.ExactThreshold,
		MaxIterations:  cfg.HeuristicMaxIterations,
		Strategy:       services.StrategyAuto,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configure optimizer")
	}

	planner, err := services.NewPlanner(model, optimizer, cfg.DefaultHorizon, cfg.Location)
	if err != nil {
		log.Fatal().Err(err).Msg("configure planner")
	}

	router := api.NewRouter(repo, planner)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	log.Info().Str("addr", ":"+cfg.Port).Str("distance_model", cfg.DistanceModel).Msg("Server listening")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// newDistanceModel picks the travel time model. ORS matrices are cached in
// Redis when configured, otherwise in Postgres when a database is open.
func newDistanceModel(cfg config.Config, conn *sql.DB) (ports.DistanceModel, error) {
	if cfg.DistanceModel != "ors" {
		return distance.NewHaversineModel(cfg.AverageSpeedKmh)
	}

	var distanceCache ports.DistanceCache
	switch {
	case cfg.RedisAddress != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		distanceCache = cache.NewRedisDistanceCache(client, distanceCacheTTL)
	case conn != nil:
		distanceCache = cache.NewSQLDistanceCache(conn)
	}

	return distance.NewORSMatrixSource(cfg.ORSAPIKey, distanceCache)
}
