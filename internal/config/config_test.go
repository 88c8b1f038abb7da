package config_test

import (
	"testing"

	"jobboard/geo-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "GRPC_PORT", "STORE_BACKEND", "DATA_FILE", "DEFAULT_RADIUS_KM", "RECOMMEND_TOP_K", "BACKFILL_SCHEDULE", "REDIS_URL", "RECOMMEND_MODEL_FILE"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != "file" || cfg.DataFile != "data/db.json" {
		t.Errorf("unexpected store settings %+v", cfg)
	}
	if cfg.DefaultRadiusKm != 50 || cfg.RecommendTopK != 6 {
		t.Errorf("unexpected defaults radius=%v topK=%d", cfg.DefaultRadiusKm, cfg.RecommendTopK)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("DEFAULT_RADIUS_KM", "12.5")
	t.Setenv("RECOMMEND_TOP_K", "3")
	t.Setenv("BACKFILL_SCHEDULE", "@every 6h")
	t.Setenv("RECOMMEND_MODEL_FILE", "/var/lib/geo/model.json")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultRadiusKm != 12.5 || cfg.RecommendTopK != 3 || cfg.BackfillSchedule != "@every 6h" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RecommendModel != "/var/lib/geo/model.json" {
		t.Errorf("RecommendModel = %q", cfg.RecommendModel)
	}
	if opts := cfg.StoreOptions(); opts.DatabaseURL != "postgres://localhost/jobs" {
		t.Errorf("StoreOptions = %+v", opts)
	}
}

func TestLoad_FailFast(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "sqlite"}},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": ""}},
		{"mongo without uri", map[string]string{"STORE_BACKEND": "mongo", "MONGODB_URI": ""}},
		{"bad radius", map[string]string{"DEFAULT_RADIUS_KM": "far"}},
		{"zero radius", map[string]string{"DEFAULT_RADIUS_KM": "0"}},
		{"bad top k", map[string]string{"RECOMMEND_TOP_K": "-1"}},
		{"bad schedule", map[string]string{"BACKFILL_SCHEDULE": "every now and then"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
