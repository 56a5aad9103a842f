package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/anonto42/userdir/backend/validators"
	"go.uber.org/zap"
)

// LoginUserID is the reserved id segment that routes PUT /users/{id} to UpsertByName.
const LoginUserID = "loginUser"

// UserService owns user records
type UserService struct {
	users     repositories.UserRepository
	validator *validators.Validator
	log       *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, v *validators.Validator, log *zap.Logger) *UserService {
	return &UserService{users: users, validator: v, log: log}
}

// List returns every user, or only those named name (sorted by name) when name is set.
func (s *UserService) List(ctx context.Context, name string) ([]models.User, error) {
	if name != "" {
		return s.users.GetUsersByName(ctx, name)
	}
	return s.users.GetUsers(ctx)
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if !validators.IsValidID(id) {
		return nil, fmt.Errorf("%w: malformed id %q", ErrBadRequest, id)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.classify("get user", err)
	}
	return user, nil
}

// Create persists a new user. Name uniqueness is left to the store's unique index.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	user := &models.User{Name: req.Name, AvatarURL: req.AvatarURL}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, s.classify("create user", err)
	}
	return user, nil
}

// Update replaces only the fields present in req.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	if !validators.IsValidID(id) {
		return nil, fmt.Errorf("%w: malformed id %q", ErrBadRequest, id)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	user, err := s.users.UpdateUser(ctx, id, req)
	if err != nil {
		return nil, s.classify("update user", err)
	}
	return user, nil
}

// UpsertByName sets the avatar of the user called req.Name, creating that user if
// needed. It never reports NotFound.
func (s *UserService) UpsertByName(ctx context.Context, req models.LoginUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	user, err := s.users.UpsertUserByName(ctx, req.Name, req.AvatarURL)
	if err != nil {
		return nil, s.classify("upsert user", err)
	}
	return user, nil
}

// Delete removes the user with the given id and returns the removed record.
// Follow edges that reference it are left in place.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	if !validators.IsValidID(id) {
		return nil, fmt.Errorf("%w: malformed id %q", ErrBadRequest, id)
	}
	user, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return nil, s.classify("delete user", err)
	}
	return user, nil
}

// classify maps repository errors for id-based operations. Store faults other than
// a missing record are reported as BadRequest.
func (s *UserService) classify(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	if !errors.Is(err, repositories.ErrDuplicateKey) && !errors.Is(err, repositories.ErrInvalidID) {
		s.log.Warn("store fault reported as bad request", zap.String("op", op), zap.Error(err))
	}
	return fmt.Errorf("%w: %s: %v", ErrBadRequest, op, err)
}
