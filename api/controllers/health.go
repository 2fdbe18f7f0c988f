package controllers

import (
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/rahulmenon/freshkart-backend/api/responses"
	"github.com/rahulmenon/freshkart-backend/pkg/config"
	"github.com/rahulmenon/freshkart-backend/pkg/db"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
	"github.com/rahulmenon/freshkart-backend/pkg/logger"
	pkgredis "github.com/rahulmenon/freshkart-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FreshKart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports the first window of
// failures together.
func HealthReady(cfg *config.Config, database db.Pinger, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := contextWithTimeout(r, 3*time.Second)
		defer cancel()

		var err error
		if database != nil {
			err = multierr.Append(err, database.Ping(ctx))
		}
		if cache != nil {
			err = multierr.Append(err, cache.Ping(ctx))
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable"))
			return
		}

		w.Header().Set("X-FreshKart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
