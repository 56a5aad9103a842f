package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/anonto42/userdir/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowService owns follow edges. It reads users only to resolve follow lists.
type FollowService struct {
	follows   repositories.FollowRepository
	users     repositories.UserRepository
	validator *validators.Validator
}

// NewFollowService creates a new FollowService
func NewFollowService(follows repositories.FollowRepository, users repositories.UserRepository, v *validators.Validator) *FollowService {
	return &FollowService{follows: follows, users: users, validator: v}
}

// ListFollowedUsers returns the users that userID follows. The edge lookup and the
// user lookup are separate reads; users deleted in between are simply absent.
func (s *FollowService) ListFollowedUsers(ctx context.Context, userID string) ([]models.User, error) {
	if !validators.IsValidID(userID) {
		return nil, fmt.Errorf("%w: malformed id %q", ErrBadRequest, userID)
	}
	ids, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.users.GetUsersByIDs(ctx, ids)
}

// Create records that userID follows req.FollowID. Following the same user twice
// is rejected by the store's unique index and reported as BadRequest.
func (s *FollowService) Create(ctx context.Context, userID string, req models.FollowRequest) error {
	if !validators.IsValidFollowPayload(req) {
		return fmt.Errorf("%w: followId is required", ErrBadRequest)
	}
	candidate := models.NewFollowRequest{UserID: userID, FollowID: req.FollowID}
	if err := s.validator.Validate(candidate); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	// Both ids were validated above.
	userObjID, _ := primitive.ObjectIDFromHex(candidate.UserID)
	followObjID, _ := primitive.ObjectIDFromHex(candidate.FollowID)
	follow := &models.Follow{UserID: userObjID, FollowID: followObjID}
	if err := s.follows.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return err
	}
	return nil
}

// Delete removes the userID -> followID edge. A malformed id cannot name a stored
// edge, so it is reported as NotFound like any other absent pair.
func (s *FollowService) Delete(ctx context.Context, userID, followID string) error {
	err := s.follows.DeleteFollow(ctx, userID, followID)
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
		return fmt.Errorf("%w: follow %s -> %s", ErrNotFound, userID, followID)
	}
	return err
}
