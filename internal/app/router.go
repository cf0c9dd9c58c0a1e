package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fueldesk/fueldesk/internal/distribution"
	"github.com/fueldesk/fueldesk/internal/masterdata/branches"
	"github.com/fueldesk/fueldesk/internal/observability"
	"github.com/fueldesk/fueldesk/internal/pumpsale"
	"github.com/fueldesk/fueldesk/internal/transport"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	BranchesHandler     *branches.Handler
	DistributionHandler *distribution.Handler
	PumpSaleHandler     *pumpsale.Handler
	TransportHandler    *transport.Handler
	Pool                *pgxpool.Pool
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with FuelDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				params.Logger.Error("readiness ping", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	if params.BranchesHandler != nil {
		r.Route("/branches", params.BranchesHandler.MountRoutes)
	}
	if params.DistributionHandler != nil {
		r.Route("/distribution", params.DistributionHandler.MountRoutes)
	}
	if params.PumpSaleHandler != nil {
		r.Route("/pump-sales", params.PumpSaleHandler.MountRoutes)
	}
	if params.TransportHandler != nil {
		r.Route("/transport", params.TransportHandler.MountRoutes)
	}

	return r
}
