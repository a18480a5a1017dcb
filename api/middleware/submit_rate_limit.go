package middleware

import (
	"context"
	"net/http"

	"github.com/detoxsabeho/orders-backend/api/responses"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

type submitLimiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}

// SubmitRateLimit throttles order submissions per client IP against the
// file-backed sliding window limiter.
func SubmitRateLimit(limiter submitLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := ClientIP(r)

			ok, err := limiter.Allow(ctx, ip)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !ok {
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit,
					"order limit reached for this hour, please retry later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
