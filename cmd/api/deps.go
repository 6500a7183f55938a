package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"horizon/internal/domain/aggregation"
	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/session"
	"horizon/internal/domain/transfer"
	"horizon/internal/infrastructure/bankdata"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/firebase"
	"horizon/internal/infrastructure/payments"
	"horizon/internal/infrastructure/postgres"
	"horizon/internal/infrastructure/redisstore"
	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Redis *redis.Client

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	UserHandler         *httphandlers.UserHandler
	LinkHandler         *httphandlers.LinkHandler
	AccountHandler      *httphandlers.AccountHandler
	TransferHandler     *httphandlers.TransferHandler
	NotificationHandler *httphandlers.NotificationHandler
	HealthHandler       *httphandlers.HealthHandler

	// Sessions (for the auth middleware)
	SessionStore session.Store
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database and apply pending migrations
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL()); err != nil {
		db.Close()
		return nil, err
	}

	// Connect to the session store
	redisClient, err := redisstore.Connect(cfg.Redis.Addr(), cfg.Redis.Password)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Println("Connected to session store")
	sessionStore := redisstore.NewSessionStore(redisClient)

	// Initialize encryptor
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	accountRepo := postgres.NewLinkedAccountRepository(db, encryptor)
	transferRepo := postgres.NewTransferRepository(db)
	deviceTokenRepo := postgres.NewDeviceTokenRepository(db)

	// Initialize provider clients
	bankdataClient := bankdata.NewClient(cfg.BankData.BaseURL, cfg.BankData.ClientID, cfg.BankData.Secret, cfg.BankData.Timeout)
	paymentsClient := payments.NewClient(cfg.Payments.BaseURL, cfg.Payments.APIKey, cfg.Payments.Timeout)

	// Initialize notifier if configured
	var notifier transfer.Notifier
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewNotifier(ctx, cfg.Firebase.CredentialsFile, deviceTokenRepo.ListByUserID)
		if err != nil {
			log.Printf("Warning: Failed to initialize push notifications: %v", err)
		} else {
			notifier = fcm
			log.Println("Push notifications enabled")
		}
	}

	// Initialize domain services
	aggregator := aggregation.NewAggregator(
		bankdataClient,
		accountRepo,
		aggregation.FailurePolicy(cfg.Aggregator.FailurePolicy),
		cfg.BankData.Timeout,
	)
	reconciler := aggregation.NewReconciler(
		bankdataClient,
		accountRepo,
		transferRepo,
		cfg.Aggregator.SyncMaxPages,
		cfg.Aggregator.SyncMaxRetries,
		cfg.Aggregator.SyncRetryBase,
		cfg.BankData.Timeout,
	)
	linkService := bankaccount.NewLinkService(bankdataClient, paymentsClient, accountRepo, cfg.Payments.Processor, cfg.BankData.Timeout)
	transferService := transfer.NewService(paymentsClient, accountRepo, transferRepo, userRepo, notifier, cfg.Payments.Timeout)

	// Initialize handlers
	return &Dependencies{
		DB:                  db,
		Redis:               redisClient,
		AuthHandler:         httphandlers.NewAuthHandler(userRepo, sessionStore, paymentsClient, cfg.Session.TTL),
		UserHandler:         httphandlers.NewUserHandler(userRepo),
		LinkHandler:         httphandlers.NewLinkHandler(linkService, userRepo),
		AccountHandler:      httphandlers.NewAccountHandler(aggregator, reconciler),
		TransferHandler:     httphandlers.NewTransferHandler(transferService),
		NotificationHandler: httphandlers.NewNotificationHandler(deviceTokenRepo),
		HealthHandler:       httphandlers.NewHealthHandler(db),
		SessionStore:        sessionStore,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
