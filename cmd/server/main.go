package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarer-app/wayfarer/internal/auth"
	"github.com/wayfarer-app/wayfarer/internal/config"
	"github.com/wayfarer-app/wayfarer/internal/middleware"
	"github.com/wayfarer-app/wayfarer/internal/notify"
	"github.com/wayfarer-app/wayfarer/internal/realtime"
	"github.com/wayfarer-app/wayfarer/internal/scheduler"
	"github.com/wayfarer-app/wayfarer/internal/service"
	"github.com/wayfarer-app/wayfarer/internal/storage/sqlite"
	"github.com/wayfarer-app/wayfarer/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	authz := service.NewAuthorizer(store, store)

	hub := realtime.NewHub(jwtManager, authz)
	pusher := notify.NewWebPushClient(cfg.VAPIDSubject, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	dispatcher := notify.NewDispatcher(hub, store, pusher, nil)

	srv := &server{
		auth:          service.NewAuthService(authenticator, jwtManager),
		groups:        service.NewGroupService(store, authz),
		tours:         service.NewTourService(store, authz),
		expenses:      service.NewExpenseService(store, authz),
		finances:      service.NewFinanceService(store, authz),
		announcements: service.NewAnnounceService(store, authz, dispatcher),
		notifications: service.NewNotificationService(store),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(store, dispatcher, nil)
	go sched.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", srv.handleRegister)
	mux.HandleFunc("POST /api/auth/login", srv.handleLogin)
	mux.Handle("/ws", hub.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	api := http.NewServeMux()
	srv.routes(api)
	mux.Handle("/api/", middleware.RequireAuth(jwtManager)(api))

	handler := middleware.Logging(corsMiddleware(mux))

	slog.Info("Server starting", "address", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
