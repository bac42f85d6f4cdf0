// Smartodo is a small multi-user task-tracking backend: users register, log in
// with stateless signed tokens, and manage a private task list. This file
// wires configuration, the database pool, services, handlers, the router and
// its middleware chain, and handles graceful shutdown.
//
// @title Smartodo API
// @version 1.0
// @description Multi-user task tracking API with stateless token authentication.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/smartodo-go/apperror"
	"github.com/user/smartodo-go/auth"
	"github.com/user/smartodo-go/config"
	"github.com/user/smartodo-go/db"
	_ "github.com/user/smartodo-go/docs" // Generated Swagger docs
	"github.com/user/smartodo-go/tasks"
	"github.com/user/smartodo-go/users"
)

func main() {
	// .env is a development convenience; in production the variables are set
	// directly in the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.EnableExtensions(pool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wiring: credential store -> token manager -> auth service/gate -> tasks.
	userStore := users.NewStore(pool)
	tokenManager := auth.NewTokenManager(cfg.Auth)
	authService := auth.NewService(userStore, tokenManager)
	authHandlers := auth.NewHandlers(authService)
	authMiddleware := auth.Middleware(tokenManager, userStore)

	taskService := tasks.NewTaskService(pool)
	taskHandler := tasks.NewTaskHandler(taskService)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery. Uncaught handler errors become 500 responses; the stack
	// trace is included in the body only in development mode.
	r.Use(recoverer(cfg.Server))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		auth.WriteJSON(w, http.StatusOK, apperror.Envelope{
			Success: true,
			Message: "Smartodo API is running",
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authMiddleware)
		taskHandler.RegisterRoutes(r)
	})

	// Unmatched routes get the same envelope as everything else.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteJSON(w, http.StatusNotFound, apperror.Envelope{
			Success: false,
			Message: "Route not found.",
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (%s mode)", addr, cfg.Server.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// recoverer converts panics into 500 envelope responses. In development mode
// the stack trace rides along in the errors field; in production only the
// generic message is sent and the stack goes to the log.
func recoverer(server *config.ServerConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					stack := debug.Stack()
					log.Printf("Panic: %+v\n%s", rvr, stack)

					resp := apperror.Envelope{
						Success: false,
						Message: "Internal server error.",
					}
					if server.IsDevelopment() {
						resp.Errors = []string{fmt.Sprintf("%v", rvr), string(stack)}
					}
					auth.WriteJSON(ww, http.StatusInternalServerError, resp)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
