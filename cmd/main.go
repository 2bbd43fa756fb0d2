package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pricegov/internal/config"
	"pricegov/internal/db"
	"pricegov/utils"
)

func main() {
	boot, _ := zap.NewProduction()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn("loading .env", zap.Error(err))
	}

	configPath := flag.String("config", "", "path to the YAML config file, defaults to $CONFIG_PATH")
	addr := flag.String("addr", "", "HTTP network address, overrides the config")
	migrateOnly := flag.Bool("migrate", false, "apply migrations and exit")
	seedOnly := flag.Bool("seed", false, "apply migrations, load seed data and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal("loading config", zap.Error(err))
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		boot.Fatal("building logger", zap.Error(err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger, *migrateOnly, *seedOnly); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func run(cfg config.Config, logger *zap.Logger, migrateOnly, seedOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.MySQLDSN()
	if err != nil {
		return err
	}
	conn, err := openDB(dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.ApplyMigrations(ctx, conn); err != nil {
		return err
	}
	if migrateOnly {
		logger.Info("migrations applied")
		return nil
	}

	tokens, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		return err
	}
	storage, err := newStorage(cfg)
	if err != nil {
		return err
	}
	rdb := openRedis(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	wsManager := NewWebSocketManager()
	app := initializeApp(cfg, deps{
		db:      conn,
		redis:   rdb,
		push:    newPusher(ctx, cfg, logger),
		storage: storage,
		tokens:  tokens,
		ws:      wsManager,
	}, logger)

	if seedOnly {
		return app.seed(ctx)
	}

	go wsManager.Run(ctx)
	startSessionCleaner(ctx, app.userService, logger)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
		ExposedHeaders:   []string{"Authorization"},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		ErrorLog:     zap.NewStdLog(logger),
		Handler:      addSecurityHeaders(c.Handler(app.routes())),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
