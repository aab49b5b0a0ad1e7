package mongo

import (
	"context"
	"time"

	"stayvista/config"

	"github.com/rs/zerolog/log"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// New connects and pings the configured MongoDB deployment.
func New(config *config.Config) *mongoDriver.Database {
	timeout := time.Duration(config.DB.Mongo.TimeoutSeconds) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongoDriver.Connect(ctx, options.Client().
		ApplyURI(config.DB.Mongo.URI).
		SetAppName(config.App.Name).
		SetTimeout(timeout))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}

	log.Info().Str("database", config.DB.Mongo.Database).Msg("Connected to MongoDB")

	return client.Database(config.DB.Mongo.Database)
}
