package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// listDocuments runs a find and converts every document with decoder.
// T - type of the stored document
// R - type of the result (domain object)
//
// Documents that fail to decode are skipped and logged; the returned slice
// is never nil.
func listDocuments[T any, R any](
	ctx context.Context,
	collection *mongo.Collection,
	filter bson.M,
	opts *options.FindOptionsBuilder,
	decoder func(*T) (R, error),
	logger *slog.Logger,
) ([]R, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, HandleMongoError(err, collection.Name())
	}
	defer cursor.Close(ctx)

	results := make([]R, 0)
	for cursor.Next(ctx) {
		var doc T
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			logger.WarnContext(ctx, "skipping undecodable document",
				slog.String("collection", collection.Name()),
				slog.String("error", decodeErr.Error()),
			)
			continue
		}

		item, docErr := decoder(&doc)
		if docErr != nil {
			logger.WarnContext(ctx, "skipping invalid document",
				slog.String("collection", collection.Name()),
				slog.String("error", docErr.Error()),
			)
			continue
		}

		results = append(results, item)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return results, nil
}
