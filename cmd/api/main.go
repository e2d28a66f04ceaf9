// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"petrocalc/internal/app"
	"petrocalc/internal/config"
	hh "petrocalc/internal/handlers/http"
	"petrocalc/internal/logging"
)

var BuildVersion = "dev" // diisi saat ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync() //nolint:errcheck

	hh.SetVersion(BuildVersion)
	a := app.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB opsional: kalkulator tetap jalan, tool berbasis DB menjawab 503
	if cfg.MySQL.Enabled {
		conn, err := app.OpenDB(ctx, cfg, logger, 5, 2*time.Second)
		if err != nil {
			logger.Warn("running without mysql", zap.Error(err))
		} else {
			defer conn.Close()
			a.AttachDB(conn)
		}
	}

	if err := a.Serve(ctx, ":"+cfg.AppPort); err != nil {
		logger.Fatal("api server", zap.Error(err))
	}
}
