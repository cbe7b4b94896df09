package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shubham-ralli/form-b/internal/antibot"
	"github.com/shubham-ralli/form-b/internal/config"
	"github.com/shubham-ralli/form-b/internal/gelf"
	"github.com/shubham-ralli/form-b/internal/handler"
	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/router"
	"github.com/shubham-ralli/form-b/internal/service"
)

func main() {
	cfg := config.Load()
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	// GELF UDP logging
	if cfg.GelfAddr != "" {
		hook, err := gelf.New(cfg.GelfAddr, "formcraftd")
		if err != nil {
			log.Warnf("GELF init failed: %v", err)
		} else {
			log.AddHook(hook)
			defer hook.Close()
			log.Infof("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store, err)
	}
	defer store.close()

	counter := rateCounter(ctx, cfg.RedisAddr)

	// Services
	authSvc := service.NewAuthService(store.stores, cfg.JWTSecret, cfg.TokenTTL)
	formSvc := service.NewFormService(store.stores)
	subSvc := service.NewSubmissionService(store.stores, antibot.New(counter))
	planSvc := service.NewPlanService(store.stores)
	analyticsSvc := service.NewAnalyticsService(store.stores)
	adminSvc := service.NewAdminService(store.stores, cfg.AdminKey)

	// Router
	r := router.New(cfg.JWTSecret, authSvc,
		handler.NewHealthHandler(store.ping),
		handler.NewAuthHandler(authSvc),
		handler.NewFormHandler(formSvc),
		handler.NewSubmissionHandler(subSvc),
		handler.NewPlanHandler(planSvc),
		handler.NewAnalyticsHandler(analyticsSvc),
		handler.NewAdminHandler(adminSvc),
		handler.NewEmbedHandler(formSvc, subSvc, cfg.PublicURL),
	)

	// Serve immediately; indexes and the admin seed are prepared in the
	// background.
	go func() {
		log.Infof("Background init: starting")
		if err := store.prepare(ctx); err != nil {
			log.Warnf("Background init: %v", err)
		}
		if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass); err != nil {
			log.Warnf("Failed to seed admin: %v", err)
		} else {
			log.Infof("Background init: admin %s ready", cfg.AdminEmail)
		}
		log.Infof("Background init: all done")
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	go func() {
		log.Infof("FormCraft server starting on %s (store: %s)", cfg.HTTPAddr, cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown: %v", err)
	}
}

// rateCounter prefers Redis so repeat detection holds across instances.
func rateCounter(ctx context.Context, addr string) antibot.Counter {
	if addr == "" {
		return antibot.NewMemoryCounter()
	}
	rc := antibot.NewRedisCounter(addr)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		log.Warnf("Redis at %s unavailable, counting in memory: %v", addr, err)
		rc.Close()
		return antibot.NewMemoryCounter()
	}
	log.Infof("Anti-bot counters: redis (%s)", addr)
	return rc
}
