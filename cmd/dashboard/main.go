// cmd/dashboard/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dashboard-service/internal/api"
	"dashboard-service/internal/api/handlers"
	"dashboard-service/internal/api/responses"
	"dashboard-service/internal/config"
	"dashboard-service/internal/core/dashboard"
	"dashboard-service/internal/core/export"
	"dashboard-service/internal/core/units"
	"dashboard-service/internal/core/workbook"
	"dashboard-service/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "ruta del archivo config.toml")
	port := flag.Int("port", 0, "puerto HTTP (sobrescribe la configuración)")
	workbookPath := flag.String("workbook", "", "ruta del libro de control (sobrescribe la configuración)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuración inválida: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *workbookPath != "" {
		cfg.Workbook.Path = *workbookPath
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
		Service:     "dashboard-service",
	})
	if err != nil {
		logger = logging.NewDefaultLogger("dashboard-service")
		logger.Warn("invalid log configuration, using defaults", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()
	responses.SetLogger(logger)

	csvEncoding, err := export.ParseEncoding(cfg.Export.CSVEncoding)
	if err != nil {
		logger.Fatal("invalid export encoding", zap.Error(err))
	}

	registry := workbook.Registry()
	cache := workbook.NewCache(workbook.NewLoader(registry, logger), logger)
	exportService := export.NewService(registry, cfg.Export.MaxRows)

	if cfg.Workbook.LoadOnStartup {
		loadStartupWorkbook(cache, cfg.WorkbookCandidates(), logger)
	}

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(api.Handlers{
		Workbook:  handlers.NewWorkbookHandler(cache, registry, cfg.WorkbookCandidates(), cfg.MaxUploadBytes(), logger),
		Dashboard: handlers.NewDashboardHandler(cache, registry, dashboard.NewService(registry), exportService, csvEncoding),
		Units:     handlers.NewUnitsHandler(cache, units.NewService(registry), exportService),
	}, api.RequestLogger(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("dashboard service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// loadStartupWorkbook loads the first workbook found. The service still starts
// without one; uploads fill the cache later.
func loadStartupWorkbook(cache *workbook.Cache, candidates []string, logger *zap.Logger) {
	path, err := workbook.ResolvePath(candidates...)
	if err != nil {
		logger.Warn("no startup workbook", zap.Strings("candidates", candidates), zap.Error(err))
		return
	}
	if _, err := cache.LoadFile(context.Background(), path, workbook.OriginStartup); err != nil {
		logger.Error("startup workbook failed", zap.String("path", path), zap.Error(err))
	}
}
