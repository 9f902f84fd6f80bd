package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting read from the environment.
// Call godotenv.Load before Load to pick up a local .env file.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	SeedPath      string

	// "haversine" or "ors".
	DistanceModel   string
	ORSAPIKey       string
	AverageSpeedKmh float64

	ExactThreshold         int
	HeuristicMaxIterations int
	DefaultHorizon         time.Duration
	Location               *time.Location

	LogFormat string
	Debug     bool
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	cfg := Config{
		Port:          Get("PORT", "8080"),
		DatabaseURL:   Get("DATABASE_URL", ""),
		RedisAddress:  Get("REDIS_ADDRESS", ""),
		RedisPassword: Get("REDIS_PASSWORD", ""),
		SeedPath:      Get("SEED_PATH", "data/seeds/venues.yaml"),
		DistanceModel: strings.ToLower(Get("DISTANCE_MODEL", "haversine")),
		ORSAPIKey:     Get("ORS_API_KEY", ""),
		LogFormat:     Get("LOG_FORMAT", "CONSOLE"),
		Debug:         Get("DEBUG", "NO") == "YES",
	}

	var err error
	if cfg.AverageSpeedKmh, err = getFloat("AVERAGE_SPEED_KMH", 4.5); err != nil {
		return Config{}, err
	}
	if cfg.AverageSpeedKmh <= 0 {
		return Config{}, fmt.Errorf("config: AVERAGE_SPEED_KMH must be positive, got %v", cfg.AverageSpeedKmh)
	}

	if cfg.ExactThreshold, err = getInt("EXACT_THRESHOLD", 16); err != nil {
		return Config{}, err
	}
	if cfg.ExactThreshold < 0 || cfg.ExactThreshold > 18 {
		return Config{}, fmt.Errorf("config: EXACT_THRESHOLD must be between 0 and 18, got %d", cfg.ExactThreshold)
	}

	if cfg.HeuristicMaxIterations, err = getInt("HEURISTIC_MAX_ITERATIONS", 2000); err != nil {
		return Config{}, err
	}

	if cfg.DefaultHorizon, err = getDuration("DEFAULT_HORIZON", 12*time.Hour); err != nil {
		return Config{}, err
	}

	tz := Get("TIMEZONE", "Europe/Lisbon")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("config: load TIMEZONE %q: %w", tz, err)
	}

	switch cfg.DistanceModel {
	case "haversine":
	case "ors":
		if cfg.ORSAPIKey == "" {
			return Config{}, fmt.Errorf("config: ORS_API_KEY is required when DISTANCE_MODEL=ors")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown DISTANCE_MODEL %q", cfg.DistanceModel)
	}

	return cfg, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
