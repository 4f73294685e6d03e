package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/halcyonlab/genstudio-api/internal/api"
	apiMiddleware "github.com/halcyonlab/genstudio-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	presignTTL := time.Duration(app.config.Storage.PresignTTLHours) * time.Hour

	// Create API handlers using the application's services
	imageHandler := api.NewImageHandler(
		app.runner,
		app.renderer,
		app.storage,
		app.taskLogStore,
		presignTTL,
		app.logger,
	)
	podcastHandler := api.NewPodcastHandler(app.runner, app.podcastService, app.logger)
	statusHandler := api.NewJobStatusHandler(app.statusStore)

	// Register routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate/image", imageHandler.GenerateImage)
		r.Post("/podcasts/generate", podcastHandler.GeneratePodcast)
		r.Get("/jobs/{job_id}", statusHandler.GetJobStatus)
	})

	// Health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
