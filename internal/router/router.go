package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pasuyo-app/api/internal/config"
	"github.com/pasuyo-app/api/internal/database"
	"github.com/pasuyo-app/api/internal/enum"
	"github.com/pasuyo-app/api/internal/handler"
	mw "github.com/pasuyo-app/api/internal/middleware"
	"github.com/pasuyo-app/api/internal/service"
	"github.com/pasuyo-app/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // SvelteKit dev server
			"https://app.pasuyo.ph", // Production app
		},
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
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Catalogs
		catalogHandler := handler.NewCatalogHandler()
		catalogHandler.RegisterRoutes(r)

		// Orders
		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		})
		orderHandler := handler.NewOrderHandler(orderService, queries, hub)
		messageHandler := handler.NewMessageHandler(queries, hub)

		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			messageHandler.RegisterRoutes(r)

			// Only runners and admins move orders through the pipeline.
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleRunner, enum.UserRoleAdmin))
				orderHandler.RegisterStatusRoute(r)
			})
		})
	})

	return r
}
