package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	AdminsCollection         = "admins"
	ProjectsCollection       = "projects"
	TeamMembersCollection    = "team_members"
	NewsCollection           = "news"
	HomepageVideosCollection = "homepage_videos"
)

func ConnectDatabase(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout))

	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, nil
}

// MigrateDatabase creates the indexes the API relies on. CreateMany is a no-op
// for indexes that already exist with the same definition.
func MigrateDatabase(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		AdminsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProjectsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		TeamMembersCollection: {
			{Keys: bson.D{{Key: "displayOrder", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		NewsCollection: {
			{Keys: bson.D{{Key: "displayOrder", Value: 1}, {Key: "publicationDate", Value: -1}}},
		},
		HomepageVideosCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}

	return nil
}
