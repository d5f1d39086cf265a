package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pizoo/pizoo-api/internal/application/notification"
	"github.com/pizoo/pizoo-api/internal/config"
	"github.com/pizoo/pizoo-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/pizoo/pizoo-api/internal/infrastructure/jwt"
	"github.com/pizoo/pizoo-api/internal/infrastructure/presence"
	s3infra "github.com/pizoo/pizoo-api/internal/infrastructure/s3"
	"github.com/pizoo/pizoo-api/internal/infrastructure/smtp"
	transporthttp "github.com/pizoo/pizoo-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Every endpoint except register/login requires a valid token, so
	// missing keys are fatal rather than a degraded mode.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider not available: %v", err)
	}

	// Redis-backed presence store.
	presenceStore := presence.NewStore(cfg)
	if err := presenceStore.Ping(context.Background()); err != nil {
		slog.Warn("redis not reachable, presence will degrade to offline", "err", err)
	}

	// S3 photo store.
	s3Client := s3infra.NewClient(cfg)
	photoStore := s3infra.NewPhotoStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)

	// Background notification dispatcher.
	dispatcher := notification.NewDispatcher(notificationRepo, 256)
	dispatcher.Start()
	defer dispatcher.Close()

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SwipeRepo:        dynamo.NewSwipeRepo(dynamoClient, cfg.DynamoTables.Swipes),
		MatchRepo:        dynamo.NewMatchRepo(dynamoClient, cfg.DynamoTables.Matches),
		MessageRepo:      dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		NotificationRepo: notificationRepo,
		Presence:         presenceStore,
		PhotoStore:       photoStore,
		Mailer:           mailer,
		Notifier:         dispatcher,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
