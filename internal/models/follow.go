package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Follow is a directed edge meaning UserID follows FollowID.
// The (userId, followId) pair is unique in the follows collection.
type Follow struct {
	ID       primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID   primitive.ObjectID `json:"userId" bson:"userId"`
	FollowID primitive.ObjectID `json:"followId" bson:"followId"`
}

// FollowRequest defines the request body for POST /users/:id/follows
type FollowRequest struct {
	FollowID string `json:"followId"`
}

// NewFollowRequest is the fully assembled follow candidate, path id plus body.
type NewFollowRequest struct {
	UserID   string `validate:"required,objectid"`
	FollowID string `validate:"required,objectid"`
}
