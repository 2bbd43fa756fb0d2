package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pricegov/internal/config"
	"pricegov/internal/handlers"
	"pricegov/internal/pricing"
	"pricegov/internal/repositories"
	"pricegov/internal/services"
	"pricegov/utils"
)

type application struct {
	logger    *zap.Logger
	cfg       config.Config
	db        *sql.DB
	tokens    *utils.Manager
	wsManager *WebSocketManager
	uploads   *utils.LocalStorage

	userRepo        *repositories.UserRepository
	userService     *services.UserService
	districtService *services.DistrictService
	skuService      *services.SKUService

	userHandler         *handlers.UserHandler
	districtHandler     *handlers.DistrictHandler
	skuHandler          *handlers.SKUHandler
	retailerHandler     *handlers.RetailerHandler
	pricingHandler      *handlers.PricingHandler
	farmerHandler       *handlers.FarmerHandler
	complaintHandler    *handlers.ComplaintHandler
	notificationHandler *handlers.NotificationHandler
}

// deps are the external clients initializeApp wires in. Nil Redis, Push
// or Storage values disable the cache, device pushes and uploads.
type deps struct {
	db      *sql.DB
	redis   *redis.Client
	push    services.Pusher
	storage services.FileStorage
	tokens  *utils.Manager
	ws      *WebSocketManager
}

func initializeApp(cfg config.Config, d deps, logger *zap.Logger) *application {
	// Repositories
	userRepo := &repositories.UserRepository{DB: d.db}
	districtRepo := &repositories.DistrictRepository{DB: d.db}
	skuRepo := &repositories.SKURepository{DB: d.db}
	retailerRepo := &repositories.RetailerRepository{DB: d.db}
	referenceRepo := &repositories.ReferencePriceRepository{DB: d.db}
	publishedRepo := &repositories.PublishedPriceRepository{DB: d.db}
	auditRepo := &repositories.AuditRepository{DB: d.db}
	alertRepo := &repositories.AlertRepository{DB: d.db}
	dashboardRepo := &repositories.DashboardRepository{DB: d.db}
	complaintRepo := &repositories.ComplaintRepository{DB: d.db}
	notificationRepo := &repositories.NotificationRepository{DB: d.db}

	// Services
	cache := services.NewPriceCache(d.redis, cfg.Pricing.FarmerCacheTTL)
	userService := &services.UserService{
		UserRepo:     userRepo,
		TokenManager: d.tokens,
		AccessTTL:    cfg.Auth.AccessTTL,
		RefreshTTL:   cfg.Auth.RefreshTTL,
	}
	districtService := &services.DistrictService{DistrictRepo: districtRepo}
	skuService := &services.SKUService{SKURepo: skuRepo}
	retailerService := &services.RetailerService{RetailerRepo: retailerRepo, DistrictRepo: districtRepo}
	pricingService := &services.PricingService{
		ReferenceRepo: referenceRepo,
		PublishedRepo: publishedRepo,
		AuditRepo:     auditRepo,
		AlertRepo:     alertRepo,
		RetailerRepo:  retailerRepo,
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		Cache:         cache,
		Live:          d.ws,
		Policy: pricing.Policy{
			CompliantMarkupPct: cfg.Pricing.CompliantMarkupPct,
			CeilingMarkupPct:   cfg.Pricing.CeilingMarkupPct,
		},
	}
	farmerService := &services.FarmerService{
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		ReferenceRepo: referenceRepo,
		PublishedRepo: publishedRepo,
		Cache:         cache,
	}
	notificationService := &services.NotificationService{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Live:             d.ws,
		Push:             d.push,
	}
	complaintService := &services.ComplaintService{
		ComplaintRepo: complaintRepo,
		UserRepo:      userRepo,
		RetailerRepo:  retailerRepo,
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		ReferenceRepo: referenceRepo,
		Notifier:      notificationService,
		Storage:       d.storage,
		MaxUpload:     cfg.Storage.MaxUploadBytes,
	}

	app := &application{
		logger:    logger,
		cfg:       cfg,
		db:        d.db,
		tokens:    d.tokens,
		wsManager: d.ws,

		userRepo:        userRepo,
		userService:     userService,
		districtService: districtService,
		skuService:      skuService,

		// Handlers
		userHandler:         &handlers.UserHandler{Service: userService},
		districtHandler:     &handlers.DistrictHandler{Service: districtService},
		skuHandler:          &handlers.SKUHandler{Service: skuService},
		retailerHandler:     &handlers.RetailerHandler{Service: retailerService},
		pricingHandler:      &handlers.PricingHandler{Service: pricingService, Dashboard: &services.DashboardService{DashboardRepo: dashboardRepo}},
		farmerHandler:       &handlers.FarmerHandler{Service: farmerService},
		complaintHandler:    &handlers.ComplaintHandler{Service: complaintService},
		notificationHandler: &handlers.NotificationHandler{Service: notificationService},
	}
	if local, ok := d.storage.(*utils.LocalStorage); ok {
		app.uploads = local
	}
	return app
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxIdleConns(35)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// openRedis returns nil when no address is configured. An unreachable
// server is only logged: the price cache falls back to the database.
func openRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, farmer price cache disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	return rdb
}

func newStorage(cfg config.Config) (services.FileStorage, error) {
	if cfg.Storage.Driver == "s3" {
		s3cfg := cfg.Storage.S3
		return utils.NewS3Storage(utils.S3Config{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			Bucket:    s3cfg.Bucket,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			PublicURL: s3cfg.PublicURL,
		})
	}
	return &utils.LocalStorage{Dir: cfg.Storage.LocalDir, URLPrefix: "/uploads"}, nil
}

// newPusher returns a nil interface, not a typed nil, when Firebase is off.
func newPusher(ctx context.Context, cfg config.Config, logger *zap.Logger) services.Pusher {
	if cfg.Firebase.CredentialsFile == "" {
		return nil
	}
	push, err := services.NewPushService(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Warn("firebase disabled", zap.Error(err))
		return nil
	}
	return push
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
