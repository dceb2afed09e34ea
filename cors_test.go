package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rzafh/portfolio-backend/config"
)

func corsTestConfig() *config.Config {
	return &config.Config{
		CORSConfig: config.CORSConfig{
			Environment:        "development",
			DevelopmentOrigins: []string{"http://localhost:3000"},
			ProductionOrigins:  []string{"https://portfolio.example.com"},
			AllowedMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:     []string{"Content-Type", "X-Request-ID"},
			MaxAge:             86400,
		},
	}
}

func newCORSHandler(cfg *config.Config) http.Handler {
	return CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), cfg)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := newCORSHandler(corsTestConfig())

	req := httptest.NewRequest("GET", "/feeds", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	handler := newCORSHandler(corsTestConfig())

	req := httptest.NewRequest("GET", "/feeds", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), corsTestConfig())

	req := httptest.NewRequest("OPTIONS", "/api/contact", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called)
}

func TestCORSUsesProductionOriginsInProduction(t *testing.T) {
	cfg := corsTestConfig()
	cfg.CORSConfig.Environment = "production"

	handler := newCORSHandler(cfg)

	req := httptest.NewRequest("GET", "/feeds", nil)
	req.Header.Set("Origin", "https://portfolio.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "https://portfolio.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/feeds", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
