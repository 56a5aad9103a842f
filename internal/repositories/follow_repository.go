package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, userID, followID string) error
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
	DeleteAllFollows(ctx context.Context) error
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("follows")}
}

// EnsureIndexes creates the compound unique index on (userId, followId)
func (r *MongoFollowRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "followId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// CreateFollow inserts a follow edge. A repeated pair fails with ErrDuplicateKey.
func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if follow.ID.IsZero() {
		follow.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, follow)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: follow %s -> %s", ErrDuplicateKey, follow.UserID.Hex(), follow.FollowID.Hex())
	}
	return err
}

// DeleteFollow removes the edge matching both ids exactly
func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, userID, followID string) error {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, userID)
	}
	followObjID, err := primitive.ObjectIDFromHex(followID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, followID)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"userId": userObjID, "followId": followObjID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetFollowingIDs returns the hex ids of every user followed by userID
func (r *MongoFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, userID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": objID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var follows []models.Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowID.Hex())
	}
	return ids, nil
}

// DeleteAllFollows empties the collection
func (r *MongoFollowRepository) DeleteAllFollows(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.D{})
	return err
}
