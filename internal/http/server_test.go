package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"tripintake/internal/infra"
	"tripintake/internal/modules/intake"
	"tripintake/internal/modules/tripparse"
)

type denyAll struct{}

func (denyAll) VerifyIDToken(context.Context, string) (*infra.FirebaseToken, error) {
	return nil, errors.New("denied")
}

func newTestServer() http.Handler {
	gin.SetMode(gin.TestMode)
	svc := intake.NewService(nil, tripparse.New(), nil, zerolog.Nop())
	return NewServer(ServerDeps{
		Intake:         svc,
		Verifier:       denyAll{},
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"http://localhost:3000"},
	}).Routes()
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	h := newTestServer()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tripintake_requests_total")
}

func TestRoutes_APIRequiresAuth(t *testing.T) {
	h := newTestServer()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/trips/parse", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_DiagnosticsDisabledWithoutService(t *testing.T) {
	h := newTestServer()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/diagnostics/recent", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/api/trips/parse", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
