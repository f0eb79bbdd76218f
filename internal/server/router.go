package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ayush/exercise-tracker/internal/middleware"
	"github.com/ayush/exercise-tracker/internal/static"
	"github.com/ayush/exercise-tracker/internal/tracker"
)

// RouterOptions carries what NewRouter wires together. Limiter may be nil.
type RouterOptions struct {
	Tracker        *tracker.Handler
	Site           *static.Site
	Limiter        middleware.Limiter
	AllowedOrigins []string
	MaxBodyBytes   int64
	Log            zerolog.Logger
}

func NewRouter(o RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(o.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", o.Site.Index)
	r.Handle("/public/*", http.StripPrefix("/public/", o.Site.Public()))

	r.Route("/api/users", func(r chi.Router) {
		if o.Limiter != nil {
			r.Use(middleware.RateLimit(o.Limiter, o.Log))
		}
		r.Use(middleware.MaxBytes(o.MaxBodyBytes))
		o.Tracker.Routes(r)
	})
	return r
}
