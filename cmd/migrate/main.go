package main

import (
	"context"
	"time"

	mongoMigration "gameden/internal/migrations/mongo"
	"gameden/pkg/config"
)

const (
	JobName          = "mongo-migration"
	migrationTimeout = 120 * time.Second
)

func main() {
	cfg := config.Load(JobName)
	if !cfg.UsesMongo() {
		cfg.Log.Fatal("Migrations require the mongo store driver", "store", cfg.StoreDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
