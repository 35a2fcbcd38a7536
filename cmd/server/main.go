package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/urban-guardians/backend/internal/config"
	"github.com/urban-guardians/backend/internal/handlers"
	appMiddleware "github.com/urban-guardians/backend/internal/middleware"
	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/services"
)

func main() {
	cfg := config.Load()

	reports, users, analytics := buildStores(cfg)

	exporter := services.NewExportService(reports, users, cfg.DataDir, cfg.DatabaseName)

	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret, cfg.JWTExpiration)
	reportHandler := handlers.NewReportHandler(reports, users)
	userHandler := handlers.NewUserHandler(users)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics)
	adminHandler := handlers.NewAdminHandler(reports, users, analytics, exporter)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth (rate limited to slow down credential stuffing)
		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))

			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))
				r.Get("/verify", authHandler.Verify)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			// Public browse
			r.Get("/", reportHandler.List)
			r.Get("/{reportId}", reportHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

				r.Post("/", reportHandler.Create)
				r.Get("/my", reportHandler.ListMine)
				r.Put("/{reportId}", reportHandler.Update)
				r.Delete("/{reportId}", reportHandler.Delete)
				r.Post("/{reportId}/upvote", reportHandler.Upvote)
				r.Post("/{reportId}/comment", reportHandler.Comment)
			})
		})

		// Current user
		r.Route("/users", func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Get("/profile", userHandler.Profile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Get("/stats", userHandler.Stats)
		})

		// Analytics (officials and admins)
		r.Route("/analytics", func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))
			r.Use(appMiddleware.RequireRole(users, models.RoleOfficial, models.RoleAdmin))

			r.Get("/overview", analyticsHandler.Overview)
			r.Get("/categories", analyticsHandler.ByCategory)
			r.Get("/locations", analyticsHandler.ByLocation)
			r.Get("/timeline", analyticsHandler.Timeline)
			r.Get("/priorities", analyticsHandler.PriorityDistribution)
			r.Get("/engagement", analyticsHandler.Engagement)
			r.Get("/resolution-times", analyticsHandler.ResolutionTimes)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))
			r.Use(appMiddleware.RequireRole(users, models.RoleAdmin))

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Put("/reports/{reportId}/status", adminHandler.UpdateReportStatus)
			r.Get("/users", adminHandler.ListUsers)
			r.Delete("/users/{userId}", adminHandler.DeleteUser)
			r.Post("/export", adminHandler.Export)
		})
	})

	log.Printf("Urban Guardians API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// buildStores connects to MongoDB and, if that fails within the configured
// wait, falls back to flat-file storage. The choice is made once here and
// never revisited while the process runs.
func buildStores(cfg *config.Config) (services.ReportStore, services.UserStore, services.AnalyticsService) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectWait)
	defer cancel()

	client, err := services.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Printf("MongoDB unavailable (%v), falling back to file storage in %s", err, cfg.DataDir)
		return buildFileStores(cfg)
	}

	db := client.Database(cfg.DatabaseName)
	userStore, err := services.NewMongoUserStore(ctx, db)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}
	reportStore, err := services.NewMongoReportStore(ctx, client, db)
	if err != nil {
		log.Fatalf("Failed to initialize report store: %v", err)
	}

	log.Printf("Connected to MongoDB database %q", cfg.DatabaseName)
	return reportStore, userStore, services.NewMongoAnalyticsService(db)
}

func buildFileStores(cfg *config.Config) (services.ReportStore, services.UserStore, services.AnalyticsService) {
	userStore, err := services.NewFileUserStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize file user store: %v", err)
	}
	reportStore, err := services.NewFileReportStore(cfg.DataDir, userStore)
	if err != nil {
		log.Fatalf("Failed to initialize file report store: %v", err)
	}
	return reportStore, userStore, services.NewFileAnalyticsService(reportStore, userStore)
}
