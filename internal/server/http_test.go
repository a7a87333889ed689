package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/mymath-exams/internal/config"
	"github.com/gokatarajesh/mymath-exams/internal/session"
)

func testConfig() *config.App {
	return &config.App{
		HTTPAddr: "127.0.0.1:0",
		Session:  config.Session{CookieName: "visit", TTL: time.Hour},
		CORS: config.CORS{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "DELETE"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           60,
		},
	}
}

type visitEcho struct{}

func (visitEcho) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/echo-visit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(session.VisitID(r.Context())))
	})
}

func TestHandler_BaseRoutes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	h := NewHandler(testConfig(), zerolog.Nop(), Options{Redis: client, RouteSets: []Routes{visitEcho{}}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.Close()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_IssuesVisitCookie(t *testing.T) {
	h := NewHandler(testConfig(), zerolog.Nop(), Options{RouteSets: []Routes{visitEcho{}}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/echo-visit", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "visit", cookies[0].Name)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
}

func TestHandler_CORSPreflight(t *testing.T) {
	h := NewHandler(testConfig(), zerolog.Nop(), Options{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/exams/1/questions/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
