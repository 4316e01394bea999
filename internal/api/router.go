package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/api/handlers"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/metrics"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(curveHandler *handlers.CurveHandler, fullYearHandler *handlers.FullYearHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check + metrics
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Curve endpoints
	api.HandleFunc("/curves", curveHandler.ListCurves).Methods("GET")
	api.HandleFunc("/curves/groups", curveHandler.ListGroups).Methods("GET")
	api.HandleFunc("/curves/build", curveHandler.Build).Methods("POST")

	// Full-year endpoints
	api.HandleFunc("/fullyear", fullYearHandler.GetFullYear).Methods("GET")

	// Apply middleware
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "forward-curve-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
