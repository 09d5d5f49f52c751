package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/reliability"
)

const connectTimeout = 10 * time.Second

// Connection holds the MongoDB connection and configuration
type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
	Config   *DatabaseConfig
	log      *logger.Logger
}

// Connect dials MongoDB and pings the primary, retrying transient failures
// with retry's backoff policy. Index creation failures are logged, not returned.
func Connect(ctx context.Context, config *DatabaseConfig, retry reliability.RetryConfig, log *logger.Logger) (*Connection, error) {
	if log == nil {
		log = logger.Default()
	}
	component := logger.ComponentNames.Database

	clientOptions := options.Client().ApplyURI(config.URI)
	if config.AppName != "" {
		clientOptions.SetAppName(config.AppName)
	}

	masked := config.MaskSensitiveData()
	log.Info(ctx, "Connecting to MongoDB", component, logger.Metadata{
		"database": masked.DatabaseName,
		"uri":      masked.URI,
	})

	if retry.MaxRetries < 1 {
		retry.MaxRetries = 1
	}

	var client *mongo.Client
	executor := reliability.NewRetryExecutor(retry, nil, log, component)
	err := executor.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		c, err := mongo.Connect(attemptCtx, clientOptions)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := c.Ping(attemptCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	conn := &Connection{
		Client:   client,
		Database: client.Database(config.DatabaseName),
		Config:   config,
		log:      log,
	}

	log.Info(ctx, "Connected to MongoDB", component, logger.Metadata{"database": config.DatabaseName})

	if err := conn.createIndexes(ctx); err != nil {
		log.Warn(ctx, "Failed to create database indexes", component, logger.Metadata{"error": err.Error()})
	}
	return conn, nil
}

// Disconnect closes the MongoDB connection
func (c *Connection) Disconnect(ctx context.Context) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Disconnect(ctx)
}

// GetCollection returns a MongoDB collection
func (c *Connection) GetCollection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}

// HealthCheck pings the primary
func (c *Connection) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("MongoDB client is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return nil
}

func (c *Connection) createIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ContentCollection: {
			{Keys: bson.D{{Key: "date", Value: -1}}, Options: options.Index().SetName("date_desc")},
			{Keys: bson.D{{Key: "favorite", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("favorite_created_at_desc")},
		},
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_unique").SetUnique(true)},
		},
		ClientLogsCollection: {
			{Keys: bson.D{{Key: "receivedAt", Value: -1}}, Options: options.Index().SetName("received_at_desc")},
			{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "timestamp", Value: 1}}, Options: options.Index().SetName("session_timestamp")},
		},
	}

	for name, models := range indexes {
		if _, err := c.GetCollection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
