// internal/app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"petrocalc/internal/config"
	mcphandlers "petrocalc/internal/handlers/mcp"
	"petrocalc/internal/mcp"
	"petrocalc/internal/mcp/llm"
	"petrocalc/internal/middleware"
	mysqlrepo "petrocalc/internal/repositories/mysql"
	"petrocalc/pkg/db"
)

// App menampung router utama
type App struct {
	Router *mux.Router
	Tools  *mcp.Router
	Config *config.Config
	Log    *zap.Logger
	DB     *sql.DB
}

// New membuat instance App + registrasi semua routes (HTTP & MCP).
// DB dipasang terpisah lewat AttachDB; tanpa DB kalkulator tetap jalan.
func New(cfg *config.Config, log *zap.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	mcphandlers.SetConfig(cfg)
	mcphandlers.SetLogger(log.Named("tool"))

	// ---- MCP (Model Context Protocol) ----
	RegisterMCPTools()
	tools := NewToolRouter(cfg, log)

	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(log.Named("http")), middleware.CORS)
	RegisterRoutes(r, tools)

	return &App{Router: r, Tools: tools, Config: cfg, Log: log}
}

// NewToolRouter: planner LLM hanya dipasang jika API key tersedia.
func NewToolRouter(cfg *config.Config, log *zap.Logger) *mcp.Router {
	var planner mcp.Planner
	if cfg.LLM.APIKey != "" {
		c, err := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.APIBase, cfg.LLM.Model)
		if err != nil {
			log.Warn("llm planner disabled", zap.Error(err))
		} else {
			planner = llm.NewRoutePlanner(c)
		}
	}
	return mcp.NewRouter(planner, log.Named("mcp"))
}

// AttachDB meng-inject repo MySQL ke handler tool.
func (a *App) AttachDB(conn *sql.DB) {
	if conn == nil {
		return
	}
	a.DB = conn
	mcphandlers.SetWellTestRepo(mysqlrepo.NewWellTestRepo(conn))
	mcphandlers.SetProductionRepo(mysqlrepo.NewProductionRepo(conn))
}

// OpenDB membuka pool MySQL dengan retry ping agar tahan saat container DB baru up.
func OpenDB(ctx context.Context, cfg *config.Config, log *zap.Logger, attempts int, wait time.Duration) (*sql.DB, error) {
	if !cfg.MySQL.Enabled {
		return nil, errors.New("mysql disabled (set DB_DSN or MYSQL_ENABLED=true)")
	}
	if attempts < 1 {
		attempts = 1
	}
	opts := db.Options{DSN: cfg.MySQLDSN(), MaxOpen: cfg.MySQL.MaxOpen, MaxIdle: cfg.MySQL.MaxIdle, MaxLifetime: 30 * time.Minute}

	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := db.NewMySQL(ctx, opts)
		if err == nil {
			return conn, nil
		}
		if conn != nil {
			conn.Close()
		}
		lastErr = err
		log.Warn("ping mysql failed", zap.Int("try", i+1), zap.Error(err))
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("mysql not ready after %d tries: %w", attempts, lastErr)
}

// Serve menjalankan server HTTP sampai ctx selesai, lalu shutdown graceful.
func (a *App) Serve(ctx context.Context, addr string) error {
	return serve(ctx, &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, a.Log)
}

func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
