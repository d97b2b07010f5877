package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gestoria-app/catalog-api/internal/catalog"
	"github.com/gestoria-app/catalog-api/internal/config"
	"github.com/gestoria-app/catalog-api/internal/enum"
	"github.com/gestoria-app/catalog-api/internal/handler"
	mw "github.com/gestoria-app/catalog-api/internal/middleware"
	"github.com/gestoria-app/catalog-api/internal/remote"
	"github.com/gestoria-app/catalog-api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, authority *remote.Postgres, store *catalog.EntityStore,
	projector *catalog.ViewProjector, engine *catalog.Engine, sync *catalog.OptimisticSync, hub *ws.Hub) chi.Router {

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(authority, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/catalog", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected catalog routes (ADMIN only)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.UserRoleAdmin))

		r.Route("/catalog", func(r chi.Router) {
			categoryHandler := handler.NewCategoryHandler(store, engine)
			r.Route("/categories", categoryHandler.RegisterRoutes)

			serviceHandler := handler.NewServiceHandler(store, engine)
			r.Route("/services", serviceHandler.RegisterRoutes)

			subcategoryHandler := handler.NewSubcategoryHandler(store)
			r.Route("/subcategories", subcategoryHandler.RegisterRoutes)

			itemHandler := handler.NewItemHandler(projector, engine)
			r.Route("/items", itemHandler.RegisterRoutes)

			stateHandler := handler.NewStateHandler(sync)
			stateHandler.RegisterRoutes(r)
		})
	})

	return r
}
