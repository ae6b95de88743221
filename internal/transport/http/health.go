package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"admitflow/internal/platform/redis"
	"admitflow/internal/transport/http/shared"
)

// healthz is liveness: the process is up and serving.
func healthz(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz is readiness: the database answers and, when configured, Redis does
// too. Redis is optional, so a nil client is skipped, not failed.
func readyz(db *sql.DB, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"db": "ok"}
		healthy := true

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				checks["db"] = err.Error()
				healthy = false
			}
		}
		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		shared.WriteJSON(w, status, checks)
	}
}
