package seed_test

import (
	"context"
	"testing"

	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/anonto42/userdir/backend/internal/seed"
	"github.com/anonto42/userdir/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	users := repositories.NewGormUserRepository(db)
	follows := repositories.NewGormFollowRepository(db)

	alice := seed.Users()[0]
	require.NoError(t, users.CreateUser(ctx, &alice))
	require.NoError(t, seed.Run(ctx, users, follows))
	// a second run starts from scratch instead of tripping unique indexes
	require.NoError(t, seed.Run(ctx, users, follows))

	all, err := users.GetUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, seed.Users(), all)

	ids, err := follows.GetFollowingIDs(ctx, seed.AliceID.Hex())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{seed.BobID.Hex(), seed.CarolID.Hex()}, ids)

	ids, err = follows.GetFollowingIDs(ctx, seed.BobID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{seed.AliceID.Hex()}, ids)

	ids, err = follows.GetFollowingIDs(ctx, seed.CarolID.Hex())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
