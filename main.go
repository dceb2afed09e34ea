/*
Package main initializes the portfolio backend server.

The backend watches configured RSS job feeds and pushes new postings to a
Telegram chat, and relays portfolio contact-form submissions by email.

Run the application:

	$ go run main.go

Endpoints:
  - GET|POST /api/check-jobs: Run the job-feed check and notify recent postings.
  - GET /run-status?id=<run-id>: Look up a background run.
  - POST /api/contact: Relay a contact-form submission by email.
  - GET /feeds: List the configured feed sources.
*/
package main

import (
	"crypto/sha256"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/time/rate"

	"github.com/rzafh/portfolio-backend/config"
	_ "github.com/rzafh/portfolio-backend/docs"
	"github.com/rzafh/portfolio-backend/handlers/health"
	"github.com/rzafh/portfolio-backend/middleware"
	"github.com/rzafh/portfolio-backend/monitoring"
	"github.com/rzafh/portfolio-backend/utils"
)

// RateLimiter implements a simple token bucket rate limiter
type RateLimiter struct {
	clients map[string]*ClientLimiter
	mutex   sync.RWMutex
	rate    rate.Limit
	burst   int
}

// ClientLimiter represents a rate limiter for a specific client
type ClientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*ClientLimiter),
		rate:    r,
		burst:   b,
	}
}

// Allow checks if a client is allowed to make a request
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if _, exists := rl.clients[clientID]; !exists {
		rl.clients[clientID] = &ClientLimiter{
			limiter:  rate.NewLimiter(rl.rate, rl.burst),
			lastSeen: time.Now(),
		}
	}

	rl.clients[clientID].lastSeen = time.Now()
	return rl.clients[clientID].limiter.Allow()
}

// Cleanup removes stale client entries
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	for clientID, client := range rl.clients {
		if time.Since(client.lastSeen) > 5*time.Minute {
			delete(rl.clients, clientID)
		}
	}
}

// @title Portfolio Backend API
// @version 1.0
// @description Job-feed monitoring and contact relay backend for a portfolio site
// @BasePath /
func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize structured logger
	middleware.InitLogger(os.Getenv("LOG_LEVEL"))
	middleware.Logger.Info("Starting Portfolio Backend Server")

	// Initialize tracing
	tracerProvider, err := monitoring.InitTracing("portfolio-backend")
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer monitoring.ShutdownTracing(tracerProvider)

	// Initialize alert manager
	alertManager := monitoring.NewAlertManager(middleware.Logger)
	defer alertManager.Stop()

	// Initialize configuration and services
	appConfig, err := config.NewAppConfig()
	if err != nil {
		log.Fatalf("Failed to initialize application configuration: %v", err)
	}
	defer appConfig.Services.Close()

	// Initialize handler with dependencies using DI container
	handler := appConfig.Services.Container.GetHandler()
	healthHandler := health.NewHandler(appConfig.Services.Container.GetNotifier(), middleware.Logger)

	// Initialize rate limiter with configuration
	limiter := NewRateLimiter(rate.Limit(appConfig.Config.RateLimitRequestsPerMinute/60.0), appConfig.Config.RateLimitBurst)

	// Start cleanup goroutine with configured interval
	go func() {
		ticker := time.NewTicker(appConfig.Config.ClientCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Cleanup()
		}
	}()

	// Initialize the router
	router := mux.NewRouter()

	// Setup metrics endpoint
	monitoring.SetupMetricsEndpoint(router)

	// Setup health check endpoints (no rate limiting)
	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	router.HandleFunc("/health/live", healthHandler.HandleLiveness).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.HandleReadiness).Methods("GET")

	// Setup Swagger documentation
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Setup API routes with rate limiting and monitoring middleware.
	// POST on check-jobs is an alias for cron providers that only send POST.
	router.HandleFunc("/api/check-jobs", MonitoringMiddleware(RateLimitMiddleware(limiter, handler.HandleCheckJobs))).Methods("GET", "POST")
	router.HandleFunc("/api/contact", MonitoringMiddleware(RateLimitMiddleware(limiter, handler.HandleContact))).Methods("POST")
	router.HandleFunc("/run-status", MonitoringMiddleware(RateLimitMiddleware(limiter, handler.HandleRunStatus))).Methods("GET")
	router.HandleFunc("/feeds", MonitoringMiddleware(RateLimitMiddleware(limiter, handler.HandleListFeeds))).Methods("GET")

	// Apply logging middleware
	withLogging := middleware.LoggingMiddleware(router)

	// Attach the CORS middleware
	withCORS := CORSMiddleware(withLogging, appConfig.Config)

	// Start the server
	addr := ":" + appConfig.Config.ServerPort
	fmt.Printf("Server is running on http://localhost%s\n", addr)
	fmt.Printf("Metrics available at http://localhost%s/metrics\n", addr)
	middleware.Logger.WithField("addr", addr).Info("Server starting")
	log.Fatal(http.ListenAndServe(addr, withCORS))
}

// MonitoringMiddleware adds metrics and tracing to HTTP handlers
func MonitoringMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, span := monitoring.CreateSpan(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		defer span.End()

		monitoring.SetSpanAttributes(span, map[string]interface{}{
			"http.method":     r.Method,
			"http.url":        r.URL.String(),
			"http.user_agent": r.UserAgent(),
			"remote.addr":     r.RemoteAddr,
		})

		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := fmt.Sprintf("%d", rw.statusCode)

		monitoring.RecordHTTPRequest(r.Method, r.URL.Path, status, duration)

		monitoring.SetSpanAttributes(span, map[string]interface{}{
			"http.status_code": rw.statusCode,
			"duration_seconds": duration,
		})

		if rw.statusCode >= 400 {
			monitoring.SetSpanError(span, fmt.Errorf("HTTP %d", rw.statusCode))
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIdentifier generates a robust client identifier using multiple factors
func getClientIdentifier(r *http.Request) string {
	var identifiers []string

	// IP address, honoring proxy headers
	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		ip = strings.TrimSpace(ips[0])
	} else if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		ip = realIP
	}
	identifiers = append(identifiers, "ip:"+ip)

	// Normalized user agent
	userAgent := r.Header.Get("User-Agent")
	if userAgent != "" {
		userAgent = strings.ToLower(userAgent)
		userAgent = strings.Fields(userAgent)[0]
		identifiers = append(identifiers, "ua:"+userAgent)
	}

	// Accept-Language prefix
	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		lang := strings.ToLower(strings.TrimSpace(acceptLang[:2]))
		identifiers = append(identifiers, "lang:"+lang)
	}

	combined := strings.Join(identifiers, "|")
	finalHash := sha256.Sum256([]byte(combined))
	return fmt.Sprintf("%x", finalHash)[:16]
}

// RateLimitMiddleware implements rate limiting for HTTP handlers
func RateLimitMiddleware(limiter *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := getClientIdentifier(r)

		if !limiter.Allow(clientID) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			middleware.RespondRateLimited(w, fmt.Errorf("rate limit exceeded"), requestID)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// getAllowedOrigins returns the appropriate allowed origins based on environment
func getAllowedOrigins(corsConfig config.CORSConfig) []string {
	switch strings.ToLower(corsConfig.Environment) {
	case "production", "prod":
		return corsConfig.ProductionOrigins
	default:
		return corsConfig.DevelopmentOrigins
	}
}

// isOriginAllowed checks if the origin is allowed based on CORS configuration
func isOriginAllowed(origin string, corsConfig config.CORSConfig) bool {
	for _, allowedOrigin := range getAllowedOrigins(corsConfig) {
		if origin == allowedOrigin {
			return true
		}
	}
	return false
}

// CORSMiddleware applies the configured CORS policy and answers preflights
func CORSMiddleware(next http.Handler, appConfig *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		corsConfig := appConfig.CORSConfig

		if origin != "" && isOriginAllowed(origin, corsConfig) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if len(corsConfig.AllowedMethods) > 0 {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(corsConfig.AllowedMethods, ", "))
		} else {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if len(corsConfig.AllowedHeaders) > 0 {
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(corsConfig.AllowedHeaders, ", "))
		} else {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Request-ID")
		}

		if corsConfig.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if corsConfig.MaxAge > 0 {
			w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", corsConfig.MaxAge))
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
