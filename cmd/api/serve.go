package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"servibid/internal/adapter/api"
	"servibid/internal/adapter/api/handler"
	apimiddleware "servibid/internal/adapter/api/middleware"
	"servibid/internal/adapter/api/router"
	"servibid/internal/adapter/repository"
	"servibid/internal/domain/service"
	"servibid/internal/infrastructure/email"
	"servibid/internal/infrastructure/firebase"
	"servibid/internal/infrastructure/jwks"
	"servibid/internal/infrastructure/ratelimit"
	"servibid/internal/infrastructure/storage"
	"servibid/internal/infrastructure/websocket"
	"servibid/internal/usecase"
	"servibid/pkg/config"
	"servibid/pkg/logger"
)

const (
	paymentRequestsPerMinute = 10
	shutdownTimeout          = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and push server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := googleOptions(cfg)
	firestoreClient, err := newFirestore(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()

	bucket := cfg.StorageBucket
	if bucket == "" {
		bucket = cfg.FirebaseProject + ".appspot.com"
	}
	storageClient, err := storage.NewCloudStorageClient(ctx, bucket, cfg.StorageTimeout, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Cloud Storage: %w", err)
	}
	defer storageClient.Close()

	verifier, closeVerifier, err := newTokenVerifier(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer closeVerifier()

	customerRepo := repository.NewFirestoreCustomerRepository(firestoreClient, cfg.StorageTimeout)
	providerRepo := repository.NewFirestoreProviderRepository(firestoreClient, cfg.StorageTimeout)
	serviceRepo := repository.NewFirestoreServiceRepository(firestoreClient, cfg.StorageTimeout)
	requestRepo := repository.NewFirestoreRequestRepository(firestoreClient, cfg.StorageTimeout)
	bidRepo := repository.NewFirestoreBidRepository(firestoreClient, cfg.StorageTimeout)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient, cfg.StorageTimeout)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient, cfg.StorageTimeout)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient, cfg.StorageTimeout)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient, cfg.StorageTimeout)
	transactionRepo := repository.NewFirestoreTransactionRepository(firestoreClient, cfg.StorageTimeout)

	var gateway service.PaymentGatewayService
	if cfg.StripeSecretKey != "" {
		gateway = service.NewStripePaymentService(cfg.StripeSecretKey, cfg.PaymentTimeout)
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, using the simplified payment gateway")
		gateway = service.NewSimplifiedPaymentService()
	}

	var sender email.Sender
	if cfg.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, emails will only be logged")
		sender = email.NewLogSender()
	}
	// The dispatcher outlives the signal context so queued mail drains on shutdown.
	mailCtx, stopMail := context.WithCancel(context.Background())
	mailer := email.NewDispatcher(sender, cfg.EmailWorkers, cfg.EmailQueueSize)
	mailer.Start(mailCtx)

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		ratelimit.ActionSendMessage: ratelimit.PerMinute(cfg.ChatMessagesPerMinute),
		ratelimit.ActionCreateChat:  ratelimit.PerMinute(cfg.ChatCreatesPerMinute),
		ratelimit.ActionTyping:      ratelimit.PerSecond(cfg.TypingEventsPerSecond),
	})
	limiter.Start(ctx, 10*time.Minute)

	wsManager := websocket.NewManager(limiter)
	wsManager.Start(ctx)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, wsManager)
	chatUseCase := usecase.NewChatUseCase(chatRepo, messageRepo, customerRepo, providerRepo, notificationUseCase, wsManager, limiter)
	wsManager.SetJoinAuthorizer(chatUseCase.CanJoinChat)

	handler.Setup(
		usecase.NewAccountUseCase(customerRepo, providerRepo),
		usecase.NewRequestUseCase(requestRepo, bidRepo, reviewRepo, customerRepo, providerRepo, notificationUseCase, mailer, cfg.PaymentCurrency),
		usecase.NewBidUseCase(bidRepo, requestRepo, customerRepo, providerRepo, notificationUseCase, mailer, cfg.PaymentCurrency),
		usecase.NewReviewUseCase(reviewRepo, requestRepo, providerRepo, notificationUseCase),
		chatUseCase,
		notificationUseCase,
		usecase.NewPaymentUseCase(gateway, customerRepo, providerRepo, transactionRepo, notificationUseCase, mailer, cfg.PaymentCurrency),
		usecase.NewUploadUseCase(storageClient, cfg.UploadMaxBytes),
		usecase.NewStandingUseCase(providerRepo, requestRepo),
		usecase.NewCatalogUseCase(serviceRepo),
		wsManager,
		Version,
	)

	e := api.NewEcho(cfg.CORSOrigins)
	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.AuthMode, verifier)
	paymentLimiter := apimiddleware.NewIPRateLimiter(ctx, ratelimit.ActionPayment, paymentRequestsPerMinute)
	router.Setup(e, authMiddleware, paymentLimiter)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("auth_mode", cfg.AuthMode).Str("environment", cfg.Environment).Msg("starting server")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stopMail()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopMail()
	mailer.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// newTokenVerifier returns nil in header mode. The returned close func is never nil.
func newTokenVerifier(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (service.TokenVerifier, func(), error) {
	switch cfg.AuthMode {
	case config.AuthModeFirebase:
		app, err := newFirebaseApp(ctx, cfg, opts)
		if err != nil {
			return nil, nil, err
		}
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Firebase Auth: %w", err)
		}
		return firebase.NewFirebaseAuthClient(authClient), func() {}, nil
	case config.AuthModeJWKS:
		if cfg.AuthJWKSURL == "" {
			return nil, nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_MODE=%s", config.AuthModeJWKS)
		}
		verifier, err := jwks.NewRemoteVerifier(ctx, cfg.AuthJWKSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
		return verifier, verifier.Close, nil
	case config.AuthModeHeader:
		return nil, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
}
