// Package seed loads the demo directory: three users and their follow edges.
package seed

import (
	"context"
	"fmt"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/anonto42/userdir/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixed ids for the demo users. They start at 1 because a zero ObjectID means
// "unassigned" to the repositories.
var (
	AliceID = mustID("000000000000000000000001")
	BobID   = mustID("000000000000000000000002")
	CarolID = mustID("000000000000000000000003")
)

// Users returns fresh copies of the demo users
func Users() []models.User {
	return []models.User{
		{ID: AliceID, Name: "alice", AvatarURL: "https://1.bp.blogspot.com/-LFh4mfdjPSQ/VCIiwe10YhI/AAAAAAAAme0/J5m8xVexqqM/s800/animal_neko.png"},
		{ID: BobID, Name: "bob", AvatarURL: "https://4.bp.blogspot.com/-CtY5GzX0imo/VCIixcXx6PI/AAAAAAAAmfY/AzH9OmbuHZQ/s800/animal_penguin.png"},
		{ID: CarolID, Name: "carol", AvatarURL: "https://3.bp.blogspot.com/-n0PpkJL1BxE/VCIitXhWwpI/AAAAAAAAmfE/xLraJLXXrgk/s800/animal_hamster.png"},
	}
}

// Follows returns alice -> bob, alice -> carol and bob -> alice
func Follows() []models.Follow {
	return []models.Follow{
		{UserID: AliceID, FollowID: BobID},
		{UserID: AliceID, FollowID: CarolID},
		{UserID: BobID, FollowID: AliceID},
	}
}

// Run wipes both stores and inserts the demo data
func Run(ctx context.Context, users repositories.UserRepository, follows repositories.FollowRepository) error {
	if err := users.DeleteAllUsers(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	if err := follows.DeleteAllFollows(ctx); err != nil {
		return fmt.Errorf("clear follows: %w", err)
	}

	for _, u := range Users() {
		u := u
		if err := users.CreateUser(ctx, &u); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Name, err)
		}
	}
	for _, f := range Follows() {
		f := f
		if err := follows.CreateFollow(ctx, &f); err != nil {
			return fmt.Errorf("insert follow %s -> %s: %w", f.UserID.Hex(), f.FollowID.Hex(), err)
		}
	}
	return nil
}

func mustID(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return id
}
