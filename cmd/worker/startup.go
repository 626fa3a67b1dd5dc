// cmd/worker/startup.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"blog-backend/pkg/container"
)

const healthAddr = ":9999"

// verifyDependencies chạy các startup check; worker không có ý nghĩa khi thiếu Redis
func verifyDependencies(c *container.Container) error {
	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Redis Connection", func(ctx context.Context) error {
			if c.QueueClient == nil {
				return errors.New("task queue requires Redis")
			}
			return c.Cache.Ping(ctx)
		}},
		{"Media Storage", func(ctx context.Context) error {
			if c.Media == nil {
				log.Warn().Msg("⚠️  MinIO disabled, image tasks will be skipped")
			}
			return nil
		}},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("❌ Startup check failed")
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("✓ OK")
	}

	go startHealthCheckServer(c)
	return nil
}

// startHealthCheckServer - /health và /ready cho container orchestrator
func startHealthCheckServer(c *container.Container) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"UP","service":"blog-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.Cache.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"NOT_READY"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"READY"}`))
	})

	log.Info().Str("addr", healthAddr).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(healthAddr, mux); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}

func logStartup(c *container.Container) {
	log.Info().
		Int("concurrency", c.Config.Job.Concurrency).
		Str("reconcile_cron", c.Config.Job.ReconcileCron).
		Bool("media", c.Media != nil).
		Msg("🚀 Blog Worker started")
}
