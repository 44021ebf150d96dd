//go:build integration

package common

import (
	"context"
	"os"
	"testing"
	"time"

	"gameden/pkg/client"
	"gameden/pkg/config"
	"gameden/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "gameden_test"
	ConnectionTimeout   = 5 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// NewMongoHelper connects to MONGO_URI and skips the test when no server
// answers.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = DefaultMongoURI
	}
	dbName := os.Getenv("MONGO_DATABASE_NAME")
	if dbName == "" {
		dbName = DefaultDatabaseName
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		t.Skipf("mongo unavailable: %v", err)
	}

	h := &MongoHelper{
		Client:   mongoClient,
		Database: mongoClient.Database(dbName),
		DBName:   dbName,
	}
	t.Cleanup(func() { h.Close(t) })
	return h
}

// Config returns a config wired to the helper's connection.
func (m *MongoHelper) Config(transactions bool) *config.Config {
	return &config.Config{
		MongoDatabaseName: m.DBName,
		MongoTransactions: transactions,
		StoreDriver:       config.StoreMongo,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		SlotLockTTL:       10 * time.Second,
		Log:               logger.Nop(),
		Client:            &client.Client{Mongo: m.Client},
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CleanCollection(t *testing.T, collectionName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).DeleteMany(ctx, map[string]any{}); err != nil {
		t.Fatalf("failed to clean collection %s: %v", collectionName, err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}
