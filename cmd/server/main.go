// geo-service
//
// Location-aware discovery for the job board.
// Exposes a REST API and a gRPC service used by the Gateway to implement:
//   - nearbyJobs, nearbyCandidates: radius search around a point
//   - jobRecommendations: ranked, explained jobs for a user
//   - updateEntityLocation: persist coordinates on a record
//   - mapClusters: map markers inside a bounding box
//
// Publishes EVENT_LOCATION_UPDATED to Redis for Gateway SSE forward when
// REDIS_URL is set. Optionally geocodes location text on a cron schedule.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"jobboard/geo-service/internal/config"
	"jobboard/geo-service/internal/db"
	"jobboard/geo-service/internal/events"
	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/grpcserver"
	"jobboard/geo-service/internal/httpapi"
	"jobboard/geo-service/internal/proximity"
	"jobboard/geo-service/internal/recommend"
	"jobboard/geo-service/internal/scheduler"
	"jobboard/geo-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[geo-service] .env not loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[geo-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store ───────────────────────────────────────────────────────────────
	log.Printf("[geo-service] Opening %s store…", cfg.StoreBackend)
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("[geo-service] Store: %v", err)
	}
	defer st.Close(context.Background())
	log.Println("[geo-service] Store ready ✓")

	// ── Redis (optional) ────────────────────────────────────────────────────
	var pub events.Publisher = events.Discard{}
	if cfg.RedisURL != "" {
		log.Println("[geo-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[geo-service] Redis: %v", err)
		}
		defer rdb.Close()
		pub = events.NewRedisPublisher(rdb)
		log.Println("[geo-service] Redis connected ✓")
	}

	// ── Services ────────────────────────────────────────────────────────────
	prox := proximity.NewService(st, geo.NewGeocoder(), pub)
	recommender, err := recommend.Open(cfg.RecommendModel)
	if err != nil {
		log.Fatalf("[geo-service] Recommendation model: %v", err)
	}
	if cfg.RecommendModel != "" {
		log.Printf("[geo-service] Re-ranking with model %s ✓", cfg.RecommendModel)
	}
	rec := recommend.NewService(st, recommender)

	// ── Scheduler (optional) ────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.BackfillSchedule != "" {
		sched = scheduler.New(prox, cfg.BackfillSchedule)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[geo-service] Scheduler: %v", err)
		}
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	httpapi.NewHandler(prox, rec, cfg.DefaultRadiusKm, cfg.RecommendTopK).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[geo-service] v%s HTTP listening on :%s", version, cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[geo-service] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ─────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[geo-service] gRPC listen: %v", err)
	}
	gs := grpc.NewServer()
	grpcserver.Register(gs, grpcserver.NewServer(prox, rec, cfg.DefaultRadiusKm, cfg.RecommendTopK))

	go func() {
		log.Printf("[geo-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("[geo-service] gRPC server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[geo-service] Shutting down…")
	if sched != nil {
		sched.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	gs.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[geo-service] Shutdown error: %v", err)
	}
	log.Println("[geo-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "geo-service",
		"version": version,
	})
}
