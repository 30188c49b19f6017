package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/api"
	"github.com/hasanRafi2002/asgn-12-server/internal/api/handlers"
	"github.com/hasanRafi2002/asgn-12-server/internal/api/middleware"
	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/config"
	"github.com/hasanRafi2002/asgn-12-server/internal/db"
	"github.com/hasanRafi2002/asgn-12-server/internal/email"
	"github.com/hasanRafi2002/asgn-12-server/internal/events"
	"github.com/hasanRafi2002/asgn-12-server/internal/identity"
	"github.com/hasanRafi2002/asgn-12-server/internal/payment"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/storage"
	"github.com/hasanRafi2002/asgn-12-server/internal/tasks"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'img' (image processing), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		// The logger is not configured yet.
		_ = utils.InitLogger("development")
		utils.Logger().Fatal("failed to load configuration", zap.Error(err))
	}
	if err := utils.InitLogger(cfg.Env); err != nil {
		panic(err)
	}
	defer utils.SyncLogger()
	log := utils.Logger()

	if cfg.JaegerEndpoint != "" {
		tp, err := utils.InitTracer(cfg.AppName, cfg.JaegerEndpoint)
		if err != nil {
			log.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			}()
		}
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Error("error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, mongoDb); err != nil {
		log.Fatal("failed to ensure indexes", zap.Error(err))
	}
	cancelIndex()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Error("error disconnecting from Redis", zap.Error(err))
		}
	}()

	// Initialize S3 storage when a bucket is configured
	var imageStorage storage.IS3Storage
	if cfg.AwsS3Bucket != "" {
		imageStorage, err = storage.NewS3Storage(context.Background(), cfg)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		log.Warn("AWS_S3_BUCKET not set, image uploads and processing are disabled")
	}

	// Domain events
	publisher := events.NewNoopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("publishing domain events to Kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("error closing event publisher", zap.Error(err))
		}
	}()

	// Payment gateway. A nil offer gateway skips intent verification.
	var offerGateway payment.IGateway
	apiGateway := payment.NewDisabledGateway()
	if cfg.StripeSecretKey != "" {
		stripeGateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.PaymentCurrency)
		offerGateway = stripeGateway
		apiGateway = stripeGateway
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payments are disabled")
	}

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Info("MOCK_SERVICES enabled, using Redis email sender")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg.SmtpFromAddress)
	} else {
		primaryEmailSender = email.NewSMTPSender(cfg)
	}
	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)
	if logEmailsPath := os.Getenv("LOG_EMAILS"); logEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(logEmailsPath)
		if err != nil {
			log.Warn("file email logger disabled", zap.String("path", logEmailsPath), zap.Error(err))
		} else {
			compositeSender.AddSender(fileSender)
			log.Info("file email logger enabled", zap.String("path", logEmailsPath))
		}
	}

	// Task queue
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()
	enqueuer := tasks.NewEnqueuer(taskClient, cfg.EmailLocale)

	// Initialize Services
	listingCache := cache.NewListingCache(redisClient, cfg.GetCacheTTL)
	propertyService := services.NewPropertyService(mongoDb, listingCache, publisher, enqueuer, imageStorage)
	offerService := services.NewOfferService(mongoDb, propertyService, services.OfferServiceDeps{
		Locker:    cache.NewLocker(redisClient),
		LockTTL:   cfg.AcceptLockTTL,
		Gateway:   offerGateway,
		Publisher: publisher,
		Queue:     enqueuer,
	})
	reviewService := services.NewReviewService(mongoDb)
	wishlistService := services.NewWishlistService(mongoDb)
	emailTemplateService := services.NewEmailTemplateService(mongoDb)

	// Initialize Task Processor
	taskProcessor := tasks.NewTaskProcessor(cfg, compositeSender, imageStorage, emailTemplateService)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(redisClient, emailTemplateService, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("service API listening", zap.String("port", cfg.ServiceApiPort))
		if err := serviceSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("service API ListenAndServe error", zap.Error(err))
		}
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var rateLimiter *middleware.RateLimiterMiddleware
	var taskSrv *asynq.Server

	log.Info("starting application", zap.String("mode", cfg.RunMode))

	apiMode := func() {
		provider, err := identity.NewFirebaseProvider(context.Background(), cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile, cfg.FirebaseWebAPIKey)
		if err != nil {
			log.Fatal("failed to initialize identity provider", zap.Error(err))
		}

		router, limiter := api.SetupRouter(api.Dependencies{
			Config:      cfg,
			Users:       services.NewUserService(mongoDb, provider),
			Properties:  propertyService,
			Offers:      offerService,
			Reviews:     reviewService,
			Wishlists:   wishlistService,
			Identity:    provider,
			Gateway:     apiGateway,
			Storage:     imageStorage,
			Denylist:    cache.NewTokenDenylist(redisClient),
			Idempotency: cache.NewIdempotencyStore(redisClient),
			Readiness: map[string]handlers.ReadinessCheck{
				"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
				"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			},
		})
		rateLimiter = limiter
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("main API listening", zap.String("port", cfg.ApiPort))
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("main API ListenAndServe error", zap.Error(err))
			}
		}()
	}

	workerMode := func(bg, img bool) {
		if img && imageStorage == nil {
			log.Warn("image worker requested without S3 storage, skipping")
			img = false
		}
		srv, mux := tasks.SetupServer(redisClient, taskProcessor, img, bg)
		if srv == nil {
			return
		}
		if err := srv.Start(mux); err != nil {
			log.Fatal("task server error", zap.Error(err))
		}
		taskSrv = srv
		log.Info("task server started", zap.Bool("background", bg), zap.Bool("images", img))
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		workerMode(true, false)
	case "img":
		workerMode(false, true)
	case "all":
		apiMode()
		workerMode(true, true)
	default:
		log.Fatal("invalid run mode", zap.String("mode", cfg.RunMode))
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case <-shutdownChan:
		log.Info("shutdown requested via service API")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Error("service API shutdown error", zap.Error(err))
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Error("main API shutdown error", zap.Error(err))
		}
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if taskSrv != nil {
		taskSrv.Shutdown()
	}

	wg.Wait()
	log.Info("server gracefully stopped")
}
