package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DraftRepository defines the interface for tweet draft storage.
type DraftRepository interface {
	Create(ctx context.Context, draft *models.Draft) error
	ListByUsername(ctx context.Context, username string) ([]*models.Draft, error)
	Delete(ctx context.Context, username, id string) error
}

type draftRepository struct {
	coll *mongo.Collection
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(coll *mongo.Collection) DraftRepository {
	return &draftRepository{coll: coll}
}

func (r *draftRepository) Create(ctx context.Context, draft *models.Draft) error {
	if draft.ID.IsZero() {
		draft.ID = primitive.NewObjectID()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, draft)
	return err
}

func (r *draftRepository) ListByUsername(ctx context.Context, username string) ([]*models.Draft, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, err
	}
	var drafts []*models.Draft
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepository) Delete(ctx context.Context, username, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewValidationError("Invalid draft id")
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "username": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
