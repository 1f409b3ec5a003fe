// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tripintake/internal/http/handlers"
	"tripintake/internal/http/middleware"
	"tripintake/internal/infra"
	"tripintake/internal/metrics"
	"tripintake/internal/modules/diagnostics"
	"tripintake/internal/modules/intake"
)

// AdminRole gates the diagnostics endpoints.
const AdminRole = "admin"

type ServerDeps struct {
	Intake         *intake.Service
	Diagnostics    *diagnostics.Service
	Verifier       infra.TokenVerifier
	Logger         zerolog.Logger
	AllowedOrigins []string
}

type Server struct {
	trips    *handlers.TripHandler
	diag     *handlers.DiagnosticsHandler
	verifier infra.TokenVerifier
	log      zerolog.Logger
	origins  []string
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		trips:    handlers.NewTripHandler(deps.Intake),
		verifier: deps.Verifier,
		log:      deps.Logger,
		origins:  deps.AllowedOrigins,
	}
	if deps.Diagnostics != nil {
		s.diag = handlers.NewDiagnosticsHandler(deps.Diagnostics)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log), metrics.Middleware())
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.Auth(s.verifier))
	trips := api.Group("/trips")
	trips.POST("/parse", s.trips.Parse)
	trips.POST("/drafts", s.trips.Create)
	trips.POST("/drafts/:id/utterances", s.trips.AddUtterance)
	trips.GET("/drafts/:id", s.trips.Get)
	trips.DELETE("/drafts/:id", s.trips.Discard)

	if s.diag != nil {
		diag := api.Group("/diagnostics", middleware.RequireRole(AdminRole))
		diag.GET("/recent", s.diag.Recent)
		diag.GET("/uncovered", s.diag.Uncovered)
	}
	return r
}
