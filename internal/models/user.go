package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a directory entry stored in the "users" collection
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	AvatarURL string             `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
}

// CreateUserRequest defines the request body for creating a user
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UpdateUserRequest defines the request body for a partial user update.
// Nil fields are left untouched.
type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// LoginUserRequest defines the request body for PUT /users/loginUser
type LoginUserRequest struct {
	Name      string  `json:"name" validate:"required"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (r UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.AvatarURL == nil
}
