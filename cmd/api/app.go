package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"servibid/pkg/config"
	"servibid/pkg/logger"
)

// bootstrap loads configuration and initializes logging for every command.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.FirebaseProject == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	return cfg, nil
}

// googleOptions prefers inline credentials, then a credentials file, then
// application default credentials.
func googleOptions(cfg *config.Config) []option.ClientOption {
	switch {
	case cfg.FirebaseCredentialsJSON != "":
		logger.Info("Using Google credentials from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON))}
	case cfg.FirebaseCredentialsFile != "":
		logger.Info("Using Google credentials from file: %s", cfg.FirebaseCredentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentialsFile)}
	}
	logger.Info("Using application default credentials")
	return nil
}

func newFirebaseApp(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (*fbapp.App, error) {
	app, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:     cfg.FirebaseProject,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	return app, nil
}

func newFirestore(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}
