package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsdesk/pettycash/internal/http/auth"
	cashboxHandler "github.com/opsdesk/pettycash/internal/http/cashbox"
	consolidationHandler "github.com/opsdesk/pettycash/internal/http/consolidation"
	costcenterHandler "github.com/opsdesk/pettycash/internal/http/costcenter"
	importHandler "github.com/opsdesk/pettycash/internal/http/importcsv"
)

// Options carries the cross-cutting router settings.
type Options struct {
	AllowedOrigins []string
	JWTSecret      string
}

func New(
	opts Options,
	boxesV1 *cashboxHandler.Handler,
	consolidationV1 *consolidationHandler.Handler,
	importV1 *importHandler.Handler,
	costCentersV1 *costcenterHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Verify(opts.JWTSecret))
		}

		r.Route("/boxes", func(r chi.Router) {
			boxesV1.BoxRoutes(r)
			consolidationV1.BoxRoutes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			boxesV1.ExpenseRoutes(r)
		})

		r.Route("/import", importV1.Routes)

		r.Route("/costcenters", func(r chi.Router) {
			costCentersV1.Routes(r)
		})

		r.Route("/consolidation", consolidationV1.StatusRoutes)
	})

	return router
}
