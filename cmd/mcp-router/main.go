// cmd/mcp-router/main.go
// Server MCP mandiri (chi): /route, /tools, /call/{tool}.
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
	"petrocalc/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync() //nolint:errcheck

	a := app.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MySQL.Enabled {
		if conn, err := app.OpenDB(ctx, cfg, logger, 3, 2*time.Second); err != nil {
			logger.Warn("running without mysql", zap.Error(err))
		} else {
			defer conn.Close()
			a.AttachDB(conn)
		}
	}

	if err := a.ServeMCP(ctx, ":"+cfg.MCPPort); err != nil {
		logger.Fatal("mcp router", zap.Error(err))
	}
}
