package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type followRecord struct {
	ID       string `gorm:"primaryKey;type:char(24)"`
	UserID   string `gorm:"type:char(24);not null;uniqueIndex:idx_follows_pair"`
	FollowID string `gorm:"type:char(24);not null;uniqueIndex:idx_follows_pair"`
}

func (followRecord) TableName() string { return "follows" }

// GormFollowRepository implements FollowRepository for PostgreSQL
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// CreateFollow inserts a follow edge. A repeated pair fails with ErrDuplicateKey.
func (r *GormFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if follow.ID.IsZero() {
		follow.ID = primitive.NewObjectID()
	}
	record := followRecord{
		ID:       follow.ID.Hex(),
		UserID:   follow.UserID.Hex(),
		FollowID: follow.FollowID.Hex(),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: follow %s -> %s", ErrDuplicateKey, record.UserID, record.FollowID)
		}
		return err
	}
	return nil
}

// DeleteFollow removes the edge matching both ids exactly
func (r *GormFollowRepository) DeleteFollow(ctx context.Context, userID, followID string) error {
	userID, err := canonicalID(userID)
	if err != nil {
		return err
	}
	followID, err = canonicalID(followID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND follow_id = ?", userID, followID).
		Delete(&followRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetFollowingIDs returns the ids of every user followed by userID
func (r *GormFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	userID, err := canonicalID(userID)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	err = r.db.WithContext(ctx).Model(&followRecord{}).Where("user_id = ?", userID).Pluck("follow_id", &ids).Error
	return ids, err
}

// DeleteAllFollows empties the table
func (r *GormFollowRepository) DeleteAllFollows(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&followRecord{}).Error
}
