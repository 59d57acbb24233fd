package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scottcame/piet/config"
	"github.com/scottcame/piet/internal/logger"
)

// GetInstance connects to MongoDB and verifies the connection with a ping.
// The attempt is repeated MongoDB_RetryAttempts times with a fixed MongoDB_RetryWait pause,
// so the server can start before the database is reachable. ctx cancels the retry loop.
func GetInstance(ctx context.Context, c *config.Configuration) (*mongo.Client, error) {
	if c.MongoDB_ConnectionURI == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	attempts := c.MongoDB_RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	log := logger.WithModule("database")
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := connect(ctx, c.MongoDB_ConnectionURI)
		if err == nil {
			log.WithField("attempt", attempt).Info("Successfully connected to MongoDB")
			return client, nil
		}
		lastErr = err
		log.WithError(err).WithField("attempt", attempt).WithField("max_attempts", attempts).Warn("MongoDB connection attempt failed")

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to MongoDB: %w", ctx.Err())
		case <-time.After(c.MongoDB_RetryWait()):
		}
	}

	return nil, fmt.Errorf("connect to MongoDB after %d attempts: %w", attempts, lastErr)
}

func connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// CloseInstance closes the MongoDB client connection.
func CloseInstance(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from MongoDB")
	return nil
}
