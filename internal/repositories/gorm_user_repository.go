package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/userdir/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRecord is the relational row for models.User. Ids keep the ObjectID hex format
// so both backends accept the same identifiers.
type userRecord struct {
	ID        string `gorm:"primaryKey;type:char(24)"`
	Name      string `gorm:"not null;uniqueIndex:idx_users_name"`
	AvatarURL string `gorm:"column:avatar_url"`
}

func (userRecord) TableName() string { return "users" }

func (u userRecord) toModel() models.User {
	id, _ := primitive.ObjectIDFromHex(u.ID)
	return models.User{ID: id, Name: u.Name, AvatarURL: u.AvatarURL}
}

// EnsureSchema creates the users and follows tables with their unique indexes
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &followRecord{})
}

// GormUserRepository implements UserRepository for PostgreSQL
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetUsers retrieves all users in storage order
func (r *GormUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var records []userRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	return toUsers(records), nil
}

// GetUsersByName retrieves users with exactly the given name, sorted by name
func (r *GormUserRepository) GetUsersByName(ctx context.Context, name string) ([]models.User, error) {
	var records []userRecord
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toUsers(records), nil
}

// GetUserByID retrieves a user by hex id
func (r *GormUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user := record.toModel()
	return &user, nil
}

// GetUsersByIDs retrieves every user whose id is in ids
func (r *GormUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	canonical := make([]string, 0, len(ids))
	for _, id := range ids {
		if c, err := canonicalID(id); err == nil {
			canonical = append(canonical, c)
		}
	}
	if len(canonical) == 0 {
		return []models.User{}, nil
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", canonical).Find(&records).Error; err != nil {
		return nil, err
	}
	return toUsers(records), nil
}

// CreateUser inserts a user, assigning an id when the caller did not
func (r *GormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	record := userRecord{ID: user.ID.Hex(), Name: user.Name, AvatarURL: user.AvatarURL}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: user name %q", ErrDuplicateKey, user.Name)
		}
		return err
	}
	return nil
}

// UpdateUser sets the provided fields and returns the updated row
func (r *GormUserRepository) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return r.GetUserByID(ctx, id)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	res := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return nil, fmt.Errorf("%w: user name", ErrDuplicateKey)
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

// UpsertUserByName updates the avatar of the user called name, creating the user if absent
func (r *GormUserRepository) UpsertUserByName(ctx context.Context, name string, avatarURL *string) (*models.User, error) {
	record := userRecord{ID: primitive.NewObjectID().Hex(), Name: name}
	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}
	if avatarURL != nil {
		record.AvatarURL = *avatarURL
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"avatar_url"}),
		}
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(onConflict).Create(&record).Error; err != nil {
		return nil, err
	}

	var stored userRecord
	if err := db.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	user := stored.toModel()
	return &user, nil
}

// DeleteUser removes a user and returns the removed row
func (r *GormUserRepository) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", user.ID.Hex()).Delete(&userRecord{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteAllUsers empties the table
func (r *GormUserRepository) DeleteAllUsers(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&userRecord{}).Error
}

// canonicalID returns the lowercase hex form that id columns store. Uppercase hex
// is a valid ObjectID too, so lookups must not compare the raw string.
func canonicalID(id string) (string, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return objID.Hex(), nil
}

func toUsers(records []userRecord) []models.User {
	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.toModel())
	}
	return users
}

// isDuplicateKey matches gorm's translated error and falls back to driver messages
// for dialects without a translator.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
