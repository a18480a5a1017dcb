package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/detoxsabeho/orders-backend/api/controllers"
	"github.com/detoxsabeho/orders-backend/api/middleware"
	authsvc "github.com/detoxsabeho/orders-backend/internal/auth"
	"github.com/detoxsabeho/orders-backend/internal/mailer"
	"github.com/detoxsabeho/orders-backend/internal/notify"
	"github.com/detoxsabeho/orders-backend/internal/orders"
	"github.com/detoxsabeho/orders-backend/internal/pixel"
	"github.com/detoxsabeho/orders-backend/internal/ratelimit"
	"github.com/detoxsabeho/orders-backend/pkg/auth/session"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
	"github.com/detoxsabeho/orders-backend/pkg/redis"
)

// Deps carries everything the router wires into controllers and middleware.
// The mail and pixel services may be nil when unconfigured; the affected
// endpoints degrade instead of the whole server refusing to start.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Store        *orders.Store
	SubmitLimit  *ratelimit.Limiter
	Redis        *redis.Client
	Sessions     session.Checker
	AuthService  authsvc.Service
	MailService  mailer.Service
	PixelService pixel.Service
	Dispatcher   *notify.Dispatcher
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// Typed nil pointers must not reach the middleware as non-nil interfaces.
	passthrough := func(next http.Handler) http.Handler { return next }
	submitGuard := passthrough
	if deps.SubmitLimit != nil {
		submitGuard = middleware.SubmitRateLimit(deps.SubmitLimit, logg)
	}
	loginGuard := passthrough
	if deps.Redis != nil {
		loginGuard = middleware.LoginRateLimit(cfg.LoginLimit, deps.Redis, logg)
	}
	var cache redis.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Store, cache, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(submitGuard).
			Post("/orders", controllers.SubmitOrder(deps.Store, deps.Dispatcher, deps.MailService, logg))

		r.Post("/events/facebook", controllers.PixelEvent(deps.PixelService, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(loginGuard).
				Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.With(middleware.AdminAuth(cfg.JWT, deps.Sessions, logg)).
				Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, deps.Sessions, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Store, logg))
				r.Get("/stats", controllers.AdminOrderStats(deps.Store, logg))
				r.Get("/export", controllers.AdminExportOrders(deps.Store, logg))
				r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Store, logg))
			})
		})
	})

	return r
}
