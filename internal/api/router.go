package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/microlearn/microlearn-server/internal/logger"
)

type RouterOptions struct {
	StaticDir string

	// Workers bounds concurrently running API requests; Backlog more may wait
	// up to BacklogTimeout for a free worker.
	Workers        int
	Backlog        int
	BacklogTimeout time.Duration

	// GenerationTimeout bounds the upstream call made by a chat request.
	GenerationTimeout time.Duration
	// WriteSlack covers decoding, persistence and encoding. Zero means defaultWriteSlack.
	WriteSlack        time.Duration
}

const defaultWriteSlack = 30 * time.Second

// WriteTimeout is the smallest http.Server write deadline that still lets a
// request wait the full backlog timeout for a worker and then run a full
// generation call.
func (o RouterOptions) WriteTimeout() time.Duration {
	slack := o.WriteSlack
	if slack <= 0 {
		slack = defaultWriteSlack
	}
	return o.BacklogTimeout + o.GenerationTimeout + slack
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))      // Structured request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SetHeader("Access-Control-Allow-Origin", "*"))
		if opts.Workers > 0 {
			r.Use(middleware.ThrottleBacklog(opts.Workers, opts.Backlog, opts.BacklogTimeout))
		}

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/register", apiHandler.RegisterHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Post("/chat", apiHandler.ChatHandler)
		r.Get("/history", apiHandler.HistoryHandler)
		r.Get("/progress", apiHandler.GetProgressHandler)
		r.Post("/progress", apiHandler.SetProgressHandler)
		r.Post("/flashcard-review", apiHandler.FlashcardReviewHandler)
	})

	r.Handle("/*", NewStaticHandler(opts.StaticDir))

	return r
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
