package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskpulse-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskpulse-api/internal/api/middleware"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/realtime"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.RequestLogger(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(apiMiddleware.CORS(app.config.Server.AllowedOrigins))

	authHandler := api.NewAuthHandler(
		app.userService,
		app.jwtService,
		sessionRevoker{verifier: app.verifier, hub: app.hub},
		app.config.Server.SecureCookies,
		app.logger,
	)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier, app.logger)

	wsHandler := realtime.NewHandler(
		app.verifier,
		app.registry,
		app.hub,
		app.config.Server.AllowedOrigins,
		app.logger,
	)

	r.Get("/health", api.HealthHandler(app.registry))
	r.Handle("/ws", wsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Handle("/ws", wsHandler)

		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/profile", authHandler.Profile)
			r.Put("/auth/profile", authHandler.UpdateProfile)
			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)
				r.Get("/my-created", taskHandler.ListMyCreated)
				r.Get("/my-assigned", taskHandler.ListMyAssigned)
				r.Get("/my-overdue", taskHandler.ListMyOverdue)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})

			r.Get("/users", userHandler.ListUsers)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found")
	})

	return r
}
