package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	bankingapp "github.com/fintermediary/backoffice/internal/application/banking"
	catalogapp "github.com/fintermediary/backoffice/internal/application/catalog"
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	identityapp "github.com/fintermediary/backoffice/internal/application/identity"
	"github.com/fintermediary/backoffice/internal/application/notification"
	partnerapp "github.com/fintermediary/backoffice/internal/application/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/auth"
	"github.com/fintermediary/backoffice/internal/infrastructure/cache"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/fintermediary/backoffice/internal/infrastructure/email"
	"github.com/fintermediary/backoffice/internal/infrastructure/event"
	"github.com/fintermediary/backoffice/internal/infrastructure/exchangerate"
	"github.com/fintermediary/backoffice/internal/infrastructure/logger"
	"github.com/fintermediary/backoffice/internal/infrastructure/metrics"
	"github.com/fintermediary/backoffice/internal/infrastructure/persistence"
	"github.com/fintermediary/backoffice/internal/infrastructure/scheduler"
	"github.com/fintermediary/backoffice/internal/infrastructure/storage"
	"github.com/fintermediary/backoffice/internal/interfaces/http/handler"
	"github.com/fintermediary/backoffice/internal/interfaces/http/middleware"
	"github.com/fintermediary/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Fields:     map[string]string{"app": cfg.App.Name, "env": cfg.App.Env},
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Redis-backed stores, in memory when Redis is off or unreachable
	stores := cache.NewStores(ctx, cfg.Redis, log)
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing cache stores", zap.Error(err))
		}
	}()

	collector := metrics.NewCollector(cfg.Metrics)
	if err := collector.WatchDB(db.SQL(), cfg.Database.DBName); err != nil {
		log.Warn("Database pool metrics unavailable", zap.Error(err))
	}

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	managerRepo := persistence.NewGormRelationshipManagerRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	profitRepo := persistence.NewGormProfitSharingRepository(db.DB)
	txRepo := persistence.NewGormAssetTransactionRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)

	// Identity services
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Client)
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	organizationService := identityapp.NewOrganizationService(orgRepo, membershipRepo, userRepo)
	organizationService.SetLogger(log)
	organizationService.SetBaseCurrencyGuard(profitRepo)
	authService := identityapp.NewAuthService(
		userRepo, membershipRepo, organizationService, jwtService, blacklist,
		identityapp.DefaultAuthServiceConfig(), log,
	)

	// Domain services
	exchangeRateService := financeapp.NewExchangeRateService(rateRepo, orgRepo)
	exchangeRateService.SetLogger(log)
	exchangeRateService.SetCache(stores.Rates, cfg.ExchangeRate.CacheTTL)
	exchangeRateService.SetObserver(collector)
	if cfg.ExchangeRate.ProviderEnabled {
		provider, err := exchangerate.NewHTTPProvider(cfg.ExchangeRate)
		if err != nil {
			log.Fatal("Failed to configure exchange rate provider", zap.Error(err))
		}
		exchangeRateService.SetProvider(provider)
		log.Info("Exchange rate provider configured", zap.String("url", cfg.ExchangeRate.ProviderURL))
	}

	customerService := partnerapp.NewCustomerService(customerRepo, managerRepo, txRepo, profitRepo)
	customerService.SetLogger(log)
	managerService := partnerapp.NewRelationshipManagerService(managerRepo, customerRepo)
	accountService := bankingapp.NewBankAccountService(accountRepo, customerRepo)
	productService := catalogapp.NewProductService(productRepo, txRepo)
	expenseService := financeapp.NewExpenseService(expenseRepo, managerRepo)
	expenseService.SetLogger(log)
	profitService := financeapp.NewProfitSharingService(profitRepo, customerRepo, productRepo, managerRepo, orgRepo, exchangeRateService)
	profitService.SetLogger(log)
	txService := financeapp.NewAssetTransactionService(txRepo, customerRepo, productRepo)
	txService.SetLogger(log)

	// Receipt storage
	switch {
	case cfg.Storage.Enabled:
		s3Storage, err := storage.NewS3ReceiptStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Receipt bucket check failed", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		expenseService.SetReceiptStorage(s3Storage, cfg.Storage.PresignExpiration, cfg.Storage.MaxReceiptSize)
		log.Info("Receipt storage configured", zap.String("bucket", cfg.Storage.Bucket))
	case cfg.App.Env == "development":
		expenseService.SetReceiptStorage(storage.NewStubObjectStorage(), cfg.Storage.PresignExpiration, cfg.Storage.MaxReceiptSize)
		log.Warn("Receipt storage disabled, using stub URLs")
	}

	// Email
	renderer, err := email.NewRenderer(cfg.Email.DefaultLocale)
	if err != nil {
		log.Fatal("Failed to parse email templates", zap.Error(err))
	}
	mailer, err := email.NewMailer(cfg.Email, log)
	if err != nil {
		log.Fatal("Failed to configure mailer", zap.Error(err))
	}
	defer func() {
		if err := mailer.Close(); err != nil {
			log.Error("Error closing mailer", zap.Error(err))
		}
	}()
	sender := email.NewSender(renderer, mailer, cfg.Email)
	sender.SetObserver(collector)
	templateService := notification.NewTemplateService(sender, orgRepo)

	// Event bus and notification handlers
	eventBus := event.NewInMemoryEventBus(log,
		event.WithWorkers(cfg.Event.Workers),
		event.WithBufferSize(cfg.Event.BufferSize),
		event.WithDeliveryObserver(collector),
	)
	subscribe := func(name string, h shared.EventHandler) {
		eventBus.Subscribe(event.NewIdempotentHandler(name, h, stores.Idempotency, cfg.Event.IdempotencyTTL, log))
		log.Debug("Event handler registered", zap.String("handler", name), zap.Strings("events", h.EventTypes()))
	}
	subscribe("organization_welcome", notification.NewOrganizationWelcomeHandler(sender, orgRepo, log))
	subscribe("customer_welcome", notification.NewCustomerWelcomeHandler(sender, orgRepo, managerRepo, log))
	subscribe("expense_notification", notification.NewExpenseNotificationHandler(sender, orgRepo, managerRepo, log))
	subscribe("profit_sharing_statement", notification.NewProfitSharingStatementHandler(sender, orgRepo, customerRepo, managerRepo, log))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	organizationService.SetEventPublisher(eventBus)
	customerService.SetEventPublisher(eventBus)
	expenseService.SetEventPublisher(eventBus)
	profitService.SetEventPublisher(eventBus)
	txService.SetEventPublisher(eventBus)

	// Background jobs
	if cfg.Scheduler.Enabled && cfg.ExchangeRate.ProviderEnabled {
		jobs := scheduler.NewScheduler(cfg.Scheduler, log, scheduler.WithObserver(collector))
		jobs.Register(scheduler.JobKindExchangeRateRefresh,
			scheduler.NewRateRefreshExecutor(exchangeRateService, organizationService, log))
		if err := jobs.Every(scheduler.JobKindExchangeRateRefresh, cfg.ExchangeRate.RefreshInterval, nil); err != nil {
			log.Fatal("Failed to schedule exchange rate refresh", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := jobs.Stop(stopCtx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Duration("rate_refresh_interval", cfg.ExchangeRate.RefreshInterval),
		)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id, recovery, logging, metrics, security
	// headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Metrics.Enabled {
		engine.Use(middleware.Metrics(collector))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.RunCleanup(ctx)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	healthHandler := handler.NewHealthHandler(db, version)
	engine.GET("/health", healthHandler.Health)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	// Access control
	authDisabled := cfg.AppAuthDisabled()
	if authDisabled {
		log.Warn("Authentication is DISABLED; requests are trusted by X-User-ID header")
	}
	guards := router.Guards{
		Authenticate: middleware.JWTAuth(middleware.JWTConfig{
			Validator: authService,
			Logger:    log,
			Disabled:  authDisabled,
		}),
		Organization: middleware.OrganizationScope(middleware.OrganizationScopeConfig{
			Authorizer: organizationService,
			Logger:     log,
			Disabled:   authDisabled,
		}),
		OrganizationInactive: middleware.OrganizationScope(middleware.OrganizationScopeConfig{
			Authorizer:    organizationService,
			Logger:        log,
			AllowInactive: true,
			Disabled:      authDisabled,
		}),
		Approver: middleware.RequireApprover(),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		go authLimiter.RunCleanup(ctx)
		guards.Login = middleware.RateLimit(authLimiter)
	}

	r := router.NewRouter(engine)
	router.RegisterAPI(r, router.Handlers{
		Auth:                handler.NewAuthHandler(authService),
		Organization:        handler.NewOrganizationHandler(organizationService),
		Customer:            handler.NewCustomerHandler(customerService, accountService, txService),
		RelationshipManager: handler.NewRelationshipManagerHandler(managerService),
		BankAccount:         handler.NewBankAccountHandler(accountService),
		Product:             handler.NewProductHandler(productService),
		Expense:             handler.NewExpenseHandler(expenseService),
		ProfitSharing:       handler.NewProfitSharingHandler(profitService),
		AssetTransaction:    handler.NewAssetTransactionHandler(txService),
		ExchangeRate:        handler.NewExchangeRateHandler(exchangeRateService),
		EmailTemplate:       handler.NewEmailTemplateHandler(templateService),
	}, guards)
	r.Setup()
	log.Debug("Routes mounted", zap.String("base_path", r.BasePath()), zap.Strings("routes", r.Routes()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
