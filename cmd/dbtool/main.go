package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"tapas-route-service/internal/adapters/distance"
	"tapas-route-service/internal/adapters/repositories"
	"tapas-route-service/internal/config"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/platform/db"
	"tapas-route-service/internal/platform/obs"
	"tapas-route-service/internal/services"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

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

	seedFlag := &cli.StringFlag{
		Name:  "seed",
		Usage: "Path to the YAML venue catalog",
		Value: cfg.SeedPath,
	}

	app := &cli.App{
		Name:        "dbtool",
		Description: "Manages the tapas venue catalog and plans routes offline",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the database schema",
				Action: func(c *cli.Context) error {
					return withDB(c.Context, cfg, func(ctx context.Context, conn *sql.DB) error {
						log.Info().Msg("Initializing database schema...")
						if err := repositories.InitSchema(ctx, conn); err != nil {
							return err
						}
						log.Info().Msg("Schema ready.")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "Create the schema and replace the catalog with the seed file",
				Flags: []cli.Flag{seedFlag},
				Action: func(c *cli.Context) error {
					venues, err := repositories.LoadSeedFile(c.String("seed"))
					if err != nil {
						return err
					}

					return withDB(c.Context, cfg, func(ctx context.Context, conn *sql.DB) error {
						if err := repositories.InitSchema(ctx, conn); err != nil {
							return err
						}
						log.Info().Int("venues", len(venues)).Msg("Seeding database...")
						if err := repositories.SeedVenues(ctx, conn, venues); err != nil {
							return err
						}
						log.Info().Msg("Seeding complete.")
						return nil
					})
				},
			},
			{
				Name:      "plan",
				Usage:     "Plan a route over the seed catalog without a database",
				ArgsUsage: "[venue-id...]",
				Flags: []cli.Flag{
					seedFlag,
					&cli.Float64Flag{Name: "lat", Usage: "Start latitude", Value: 38.7139},
					&cli.Float64Flag{Name: "lon", Usage: "Start longitude", Value: -9.1394},
					&cli.StringFlag{Name: "start-at", Usage: "Start instant (RFC3339), defaults to now"},
					&cli.DurationFlag{Name: "horizon", Usage: "Time budget", Value: cfg.DefaultHorizon},
					&cli.StringFlag{Name: "objective", Usage: "cover_all or max_venues", Value: "cover_all"},
					&cli.StringFlag{Name: "strategy", Usage: "auto, exact or heuristic", Value: "auto"},
					&cli.BoolFlag{Name: "return", Usage: "Return to the start point"},
				},
				Action: func(c *cli.Context) error {
					return plan(c, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func plan(c *cli.Context, cfg config.Config) error {
	venues, err := repositories.LoadSeedFile(c.String("seed"))
	if err != nil {
		return err
	}
	repo := repositories.NewMemoryVenueRepository(venues)
	if ids := c.Args().Slice(); len(ids) > 0 {
		if venues, err = repo.GetVenues(c.Context, ids); err != nil {
			return err
		}
	}

	objective, err := domain.ParseObjective(c.String("objective"))
	if err != nil {
		return err
	}
	strategy, err := services.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}

	startAt := time.Now().In(cfg.Location)
	if s := c.String("start-at"); s != "" {
		if startAt, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("parse --start-at: %w", err)
		}
	}

	model, err := distance.NewHaversineModel(cfg.AverageSpeedKmh)
	if err != nil {
		return err
	}
	optimizer, err := services.NewOptimizer(services.OptimizerOptions{
		ExactThreshold: cfg.ExactThreshold,
		MaxIterations:  cfg.HeuristicMaxIterations,
		Strategy:       strategy,
	})
	if err != nil {
		return err
	}
	planner, err := services.NewPlanner(model, optimizer, cfg.DefaultHorizon, cfg.Location)
	if err != nil {
		return err
	}

	it, err := planner.Solve(c.Context, domain.PlanningRequest{
		Venues:        venues,
		Start:         domain.Point{Lat: c.Float64("lat"), Lon: c.Float64("lon")},
		StartAt:       startAt,
		Horizon:       c.Duration("horizon"),
		Objective:     objective,
		ReturnToStart: c.Bool("return"),
	})
	var nfe *domain.NoFeasibleRouteError
	if errors.As(err, &nfe) {
		return fmt.Errorf("no feasible route, unreachable: %s", strings.Join(nfe.Unreachable, ", "))
	}
	if err != nil {
		return err
	}

	printItinerary(c.App.Writer, it)
	return nil
}

func printItinerary(w io.Writer, it *domain.Itinerary) {
	const layout = "Mon 15:04"

	fmt.Fprintf(w, "%s route, %d stops (exact=%t)\n", it.Objective, len(it.Stops), it.Exact)
	for i, s := range it.Stops {
		fmt.Fprintf(w, "%2d. %-28s arrive %s  wait %-6s  stay %s-%s\n",
			i+1, s.Name, s.ArriveAt.Format(layout), s.Wait, s.StartAt.Format(layout), s.DepartAt.Format(layout))
	}
	if it.ReturnLeg > 0 {
		fmt.Fprintf(w, "    return to start %s\n", it.ReturnLeg)
	}
	fmt.Fprintf(w, "total %s (travel %s, wait %s), ends %s\n",
		it.TotalElapsed, it.TotalTravel, it.TotalWait, it.EndAt.Format(layout))
	if len(it.Unvisited) > 0 {
		fmt.Fprintf(w, "not visited: %s\n", strings.Join(it.Unvisited, ", "))
	}
}

// withDB opens DATABASE_URL for the duration of fn.
func withDB(ctx context.Context, cfg config.Config, fn func(context.Context, *sql.DB) error) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}
