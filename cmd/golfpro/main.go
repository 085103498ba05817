package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairwaylabs/golfpro/internal/app"
	"github.com/fairwaylabs/golfpro/internal/config"
)

func main() {
	// Same bootstrap the coach always had: a .env next to the binary is
	// loaded when present, real environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	rt, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer rt.Close()

	log.Printf("%s starting: preset=%s model=%s persona=%s", app.BuildInfo(), cfg.Preset, cfg.Model, cfg.DefaultPersona)

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: rt.API.Router(),
	}

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()
	rt.Sessions.StartJanitor(runCtx, 30*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
