// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionWaitlist = "waitlist_entries"
)

// Index names. The repository reads the unique ones back out of duplicate-key
// errors to tell which field collided.
const (
	IndexWaitlistUserIDUnique = "idx_waitlist_user_id_unique"
	IndexWaitlistEmailUnique  = "idx_waitlist_email_unique"
	IndexWaitlistCreatedAt    = "idx_waitlist_created_at"
	IndexWaitlistUserType     = "idx_waitlist_user_type_created_at"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Name       string
	Keys       bson.D
	Unique     bool
}

func (d IndexDefinition) model() mongo.IndexModel {
	opts := options.Index().SetName(d.Name)
	if d.Unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: d.Keys, Options: opts}
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent - calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, GetAllIndexDefinitions())
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	return GetWaitlistIndexes()
}

// GetWaitlistIndexes returns index definitions for the waitlist collection.
// Both uniqueness rules of the waitlist live here, so they hold even when
// two registrations race past the application-level checks.
func GetWaitlistIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// One entry per authenticated user
			Collection: CollectionWaitlist,
			Name:       IndexWaitlistUserIDUnique,
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Unique:     true,
		},
		{
			// One entry per email
			Collection: CollectionWaitlist,
			Name:       IndexWaitlistEmailUnique,
			Keys:       bson.D{{Key: "email", Value: 1}},
			Unique:     true,
		},
		{
			// Admin listing, newest first
			Collection: CollectionWaitlist,
			Name:       IndexWaitlistCreatedAt,
			Keys:       bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Collection: CollectionWaitlist,
			Name:       IndexWaitlistUserType,
			Keys:       bson.D{{Key: "user_type", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
}

// CreateCollectionIndexes creates indexes for a single collection
func CreateCollectionIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	var indexes []IndexDefinition

	switch collectionName {
	case CollectionWaitlist:
		indexes = GetWaitlistIndexes()
	default:
		return fmt.Errorf("unknown collection: %s", collectionName)
	}

	return createIndexes(ctx, db, indexes)
}

func createIndexes(ctx context.Context, db *mongo.Database, indexes []IndexDefinition) error {
	for _, idx := range indexes {
		coll := db.Collection(idx.Collection)
		if _, err := coll.Indexes().CreateOne(ctx, idx.model()); err != nil {
			return fmt.Errorf("failed to create index %s on collection %s: %w",
				idx.Name, idx.Collection, err)
		}
	}
	return nil
}
