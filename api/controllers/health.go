package controllers

import (
	"context"
	"net/http"

	"github.com/detoxsabeho/orders-backend/api/responses"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Sabeho-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the ledger file decodes and Redis
// answers a ping.
func HealthReady(cfg *config.Config, ledger, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Sabeho-Env", cfg.App.Env)

		if ledger != nil {
			if err := ledger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "ledger not ready"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
