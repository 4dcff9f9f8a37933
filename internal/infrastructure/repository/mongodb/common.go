package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/waitlist/internal/domain/errs"
)

// HandleMongoError преобразует error MongoDB in доменную error.
// returns:
//   - nil if err == nil
//   - errs.ErrNotFound if документ not найден
//   - errs.ErrAlreadyExists if нарушен unique constraint
//   - wrapped error for остальных случаев
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// duplicateKeyIndex returns the name of the first index mentioned by a
// duplicate-key write error, or "" when err is something else.
func duplicateKeyIndex(err error, indexNames ...string) string {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return ""
	}
	for _, writeErr := range we.WriteErrors {
		if !writeErr.HasErrorCode(duplicateKeyCode) {
			continue
		}
		for _, name := range indexNames {
			if strings.Contains(writeErr.Message, name) {
				return name
			}
		}
	}
	return ""
}

const duplicateKeyCode = 11000

// FindSortedDesc returns find options sorted by field, newest first
func FindSortedDesc(field string) *options.FindOptionsBuilder {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

// CountAll performs подсчет all документов in коллекции.
func CountAll(ctx context.Context, coll *mongo.Collection) (int, error) {
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
