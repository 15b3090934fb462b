package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP router with the standard middleware chain.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/content/search", s.SearchContent)
		r.Get("/resources/{id}", s.GetResource)
		r.Get("/resources/{id}/key-points", s.GetKeyPoints)

		r.Post("/documents", s.ImportDocument)
		r.Get("/documents/{id}", s.GetDocument)

		r.Post("/topics", s.AddTopicMapping)
		r.Get("/topics/{topic}/related", s.GetRelatedTopics)
		r.Get("/topics/{topic}/overview", s.GetTopicOverview)

		r.Post("/learning-plan", s.GenerateLearningPlan)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/backups", s.CreateBackup)
			r.Get("/backups", s.ListBackups)
			r.Post("/backups/{name}/restore", s.RestoreBackup)
		})
	})

	return r
}

// requestLogger logs every request with its status and duration.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
