package validators

import (
	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validator adapts go-playground/validator to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the objectid tag registered
func NewValidator() *Validator {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate runs struct validation on i
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// IsValidID reports whether value is a 24 character hex ObjectID.
func IsValidID(value string) bool {
	return primitive.IsValidObjectID(value)
}

// IsValidFollowPayload reports whether the follow body names a target.
// The target's format is checked later together with the follower id.
func IsValidFollowPayload(payload models.FollowRequest) bool {
	return payload.FollowID != ""
}
