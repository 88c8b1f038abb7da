// Package config loads and validates environment variables at startup.
// Fail-fast: if a variable is missing or malformed, Load returns an error and
// the process exits.
package config

import (
	"fmt"
	"strconv"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"jobboard/geo-service/internal/store"
)

// Config holds all runtime configuration for the geo service.
type Config struct {
	HTTPPort         string
	GRPCPort         string
	StoreBackend     string
	DataFile         string
	DatabaseURL      string
	MongoURI         string
	MongoDatabase    string
	RedisURL         string // optional; events are dropped when empty
	BackfillSchedule string // optional cron spec, e.g. "@every 6h"
	RecommendModel   string // optional path to a trained re-ranking model
	DefaultRadiusKm  float64
	RecommendTopK    int
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_PORT", "8084")
	v.SetDefault("GRPC_PORT", "9094")
	v.SetDefault("STORE_BACKEND", store.BackendFile)
	v.SetDefault("DATA_FILE", "data/db.json")
	v.SetDefault("MONGODB_DATABASE", "jobboard")
	v.SetDefault("DEFAULT_RADIUS_KM", "50")
	v.SetDefault("RECOMMEND_TOP_K", "6")

	cfg := &Config{
		HTTPPort:         v.GetString("HTTP_PORT"),
		GRPCPort:         v.GetString("GRPC_PORT"),
		StoreBackend:     v.GetString("STORE_BACKEND"),
		DataFile:         v.GetString("DATA_FILE"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		MongoURI:         v.GetString("MONGODB_URI"),
		MongoDatabase:    v.GetString("MONGODB_DATABASE"),
		RedisURL:         v.GetString("REDIS_URL"),
		BackfillSchedule: v.GetString("BACKFILL_SCHEDULE"),
		RecommendModel:   v.GetString("RECOMMEND_MODEL_FILE"),
	}

	switch cfg.StoreBackend {
	case store.BackendFile:
		if cfg.DataFile == "" {
			return nil, fmt.Errorf("DATA_FILE is required for the file backend")
		}
	case store.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case store.BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required for the mongo backend")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be file, postgres or mongo, got %q", cfg.StoreBackend)
	}

	s := v.GetString("DEFAULT_RADIUS_KM")
	radius, err := strconv.ParseFloat(s, 64)
	if err != nil || radius <= 0 {
		return nil, fmt.Errorf("DEFAULT_RADIUS_KM must be a positive number, got %q", s)
	}
	cfg.DefaultRadiusKm = radius

	s = v.GetString("RECOMMEND_TOP_K")
	topK, err := strconv.Atoi(s)
	if err != nil || topK < 1 {
		return nil, fmt.Errorf("RECOMMEND_TOP_K must be a positive integer, got %q", s)
	}
	cfg.RecommendTopK = topK

	if cfg.BackfillSchedule != "" {
		if _, err := cron.ParseStandard(cfg.BackfillSchedule); err != nil {
			return nil, fmt.Errorf("BACKFILL_SCHEDULE %q: %w", cfg.BackfillSchedule, err)
		}
	}

	return cfg, nil
}

// StoreOptions returns the store settings carried by cfg.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.StoreBackend,
		DataFile:      c.DataFile,
		DatabaseURL:   c.DatabaseURL,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}
