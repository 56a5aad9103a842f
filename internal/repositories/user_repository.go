package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUsersByName(ctx context.Context, name string) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error)
	UpsertUserByName(ctx context.Context, name string, avatarURL *string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (*models.User, error)
	DeleteAllUsers(ctx context.Context) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique index on name
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetUsers retrieves all users in natural order
func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.D{})
}

// GetUsersByName retrieves users with exactly the given name, sorted by name
func (r *MongoUserRepository) GetUsersByName(ctx context.Context, name string) ([]models.User, error) {
	return r.find(ctx, bson.M{"name": name}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// GetUserByID retrieves a user by hex id
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves every user whose id is in ids. Malformed ids are skipped.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
}

// CreateUser inserts a user, assigning an id when the caller did not
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: user name %q", ErrDuplicateKey, user.Name)
	}
	return err
}

// UpdateUser sets the provided fields and returns the updated document
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	if req.IsEmpty() {
		return r.GetUserByID(ctx, id)
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.AvatarURL != nil {
		set["avatarUrl"] = *req.AvatarURL
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: user name", ErrDuplicateKey)
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUserByName updates the avatar of the user called name, creating the user if absent
func (r *MongoUserRepository) UpsertUserByName(ctx context.Context, name string, avatarURL *string) (*models.User, error) {
	set := bson.M{"name": name}
	if avatarURL != nil {
		set["avatarUrl"] = *avatarURL
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"name": name}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user and returns the removed document
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var user models.User
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteAllUsers empties the collection
func (r *MongoUserRepository) DeleteAllUsers(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.D{})
	return err
}

func (r *MongoUserRepository) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
