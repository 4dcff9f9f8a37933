package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	appwaitlist "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/domain/errs"
	"github.com/lllypuk/waitlist/internal/domain/uuid"
	"github.com/lllypuk/waitlist/internal/domain/waitlist"
	mongoinfra "github.com/lllypuk/waitlist/internal/infrastructure/mongodb"
)

// MongoWaitlistRepository realizuet appwaitlist.Repository.
// Uniqueness of user_id and email is enforced by the collection's unique
// indexes (see mongoinfra.GetWaitlistIndexes), not by this code.
type MongoWaitlistRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// WaitlistRepoOption configures MongoWaitlistRepository.
type WaitlistRepoOption func(*MongoWaitlistRepository)

// WithWaitlistRepoLogger sets the logger for waitlist repository.
func WithWaitlistRepoLogger(logger *slog.Logger) WaitlistRepoOption {
	return func(r *MongoWaitlistRepository) {
		r.logger = logger
	}
}

// NewMongoWaitlistRepository creates a new MongoDB waitlist repository
func NewMongoWaitlistRepository(collection *mongo.Collection, opts ...WaitlistRepoOption) *MongoWaitlistRepository {
	r := &MongoWaitlistRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindByEmail finds an entry by exact email
func (r *MongoWaitlistRepository) FindByEmail(ctx context.Context, email string) (*waitlist.Entry, error) {
	if email == "" {
		return nil, errs.ErrInvalidInput
	}
	return r.findOne(ctx, bson.M{"email": email}, slog.String("email", email))
}

// FindByUserID finds an entry by the owner's identity id
func (r *MongoWaitlistRepository) FindByUserID(ctx context.Context, userID string) (*waitlist.Entry, error) {
	if userID == "" {
		return nil, errs.ErrInvalidInput
	}
	return r.findOne(ctx, bson.M{"user_id": userID}, slog.String("user_id", userID))
}

func (r *MongoWaitlistRepository) findOne(ctx context.Context, filter bson.M, attr slog.Attr) (*waitlist.Entry, error) {
	var doc waitlistDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find waitlist entry",
				attr,
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "waitlist entry")
	}

	return r.documentToEntry(&doc)
}

// Create inserts entry. It never updates an existing document.
func (r *MongoWaitlistRepository) Create(ctx context.Context, entry *waitlist.Entry) (*waitlist.Entry, error) {
	if entry == nil || entry.ID().IsZero() {
		return nil, errs.ErrInvalidInput
	}

	doc := r.entryToDocument(entry)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, uniqueViolation(err)
		}
		r.logger.ErrorContext(ctx, "failed to insert waitlist entry",
			slog.String("entry_id", entry.ID().String()),
			slog.String("user_id", entry.UserID()),
			slog.String("error", err.Error()),
		)
		return nil, HandleMongoError(err, "waitlist entry")
	}

	return entry, nil
}

// uniqueViolation names the field behind a duplicate-key error. An error
// that names neither index still matches errs.ErrAlreadyExists.
func uniqueViolation(err error) error {
	switch duplicateKeyIndex(err, mongoinfra.IndexWaitlistEmailUnique, mongoinfra.IndexWaitlistUserIDUnique) {
	case mongoinfra.IndexWaitlistEmailUnique:
		return errs.NewUniqueViolation(appwaitlist.FieldEmail)
	case mongoinfra.IndexWaitlistUserIDUnique:
		return errs.NewUniqueViolation(appwaitlist.FieldUserID)
	default:
		return errs.ErrAlreadyExists
	}
}

// ListAll returns every entry, newest first
func (r *MongoWaitlistRepository) ListAll(ctx context.Context) ([]*waitlist.Entry, error) {
	return listDocuments(ctx, r.collection, bson.M{}, FindSortedDesc("created_at"), r.documentToEntry, r.logger)
}

// Count returns the number of entries
func (r *MongoWaitlistRepository) Count(ctx context.Context) (int, error) {
	count, err := CountAll(ctx, r.collection)
	if err != nil {
		return 0, HandleMongoError(err, "waitlist entries")
	}
	return count, nil
}

// waitlistDocument represents an entry as stored in MongoDB.
// Optional fields are pointers so that "absent" round-trips as a missing key
// and "empty" as an empty string.
type waitlistDocument struct {
	EntryID         string    `bson:"entry_id"`
	UserID          string    `bson:"user_id"`
	Email           string    `bson:"email"`
	Name            string    `bson:"name"`
	UserType        string    `bson:"user_type"`
	CompanyOrHandle *string   `bson:"company_or_handle,omitempty"`
	Message         *string   `bson:"message,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
}

func (r *MongoWaitlistRepository) entryToDocument(entry *waitlist.Entry) waitlistDocument {
	return waitlistDocument{
		EntryID:         entry.ID().String(),
		UserID:          entry.UserID(),
		Email:           entry.Email(),
		Name:            entry.Name(),
		UserType:        string(entry.UserType()),
		CompanyOrHandle: entry.CompanyOrHandle(),
		Message:         entry.Message(),
		CreatedAt:       entry.CreatedAt(),
	}
}

func (r *MongoWaitlistRepository) documentToEntry(doc *waitlistDocument) (*waitlist.Entry, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.EntryID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return waitlist.Reconstruct(
		id,
		doc.UserID,
		doc.Email,
		doc.Name,
		waitlist.UserType(doc.UserType),
		doc.CompanyOrHandle,
		doc.Message,
		doc.CreatedAt.UTC(),
	), nil
}
