package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/smartbasket/internal/server"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(router chi.Router) {
	router.Get("/ping/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong " + chi.URLParam(r, "id")))
	})
	router.Get("/explode", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	router := server.NewRouter(nil)

	rr := do(t, router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestRouter_MountsHandlersUnderAPI(t *testing.T) {
	router := server.NewRouter(nil, pingRoutes{})

	rr := do(t, router, httptest.NewRequest(http.MethodGet, "/api/ping/42", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong 42", rr.Body.String())

	rr = do(t, router, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	router := server.NewRouter(nil, pingRoutes{})

	rr := do(t, router, httptest.NewRequest(http.MethodGet, "/api/explode", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRouter_MetricsUseRoutePattern(t *testing.T) {
	router := server.NewRouter(nil, pingRoutes{})

	do(t, router, httptest.NewRequest(http.MethodGet, "/api/ping/7", nil))

	rr := do(t, router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "smartbasket_http_requests_total")
	assert.Contains(t, body, `route="/api/ping/{id}"`)
	assert.NotContains(t, body, `route="/api/ping/7"`)
}

func TestRouter_CORS(t *testing.T) {
	router := server.NewRouter([]string{"http://localhost:5173"}, pingRoutes{})

	t.Run("allowed_origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/ping/1", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		rr := do(t, router, req)
		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign_origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ping/1", nil)
		req.Header.Set("Origin", "http://evil.test")

		rr := do(t, router, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
