package http

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"triage-service/internal/app"
)

// NewRouter wires the REST API, the websocket endpoint, health and metrics.
func NewRouter(service *app.TriageService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	api := NewAPIHandler(service, logger)
	ws := NewWSHandler(service, logger)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/specialties", api.ListSpecialties).Methods("GET", "OPTIONS")
	v1.HandleFunc("/specialties/{id}/questions", api.InitialQuestions).Methods("GET", "OPTIONS")
	v1.HandleFunc("/specialties/{id}/next", api.NextQuestions).Methods("POST", "OPTIONS")
	v1.HandleFunc("/specialties/{id}/check-stop", api.CheckEarlyStop).Methods("POST", "OPTIONS")
	v1.HandleFunc("/specialties/{id}/triage", api.Submit).Methods("POST", "OPTIONS")

	v1.HandleFunc("/sessions", api.StartSession).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", api.GetSession).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/answers", api.Answer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", api.Abandon).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws", ws.ServeWS).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
