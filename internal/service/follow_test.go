package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFollowLifecycle(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	followed, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, followed.ID)

	ok, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The edge is directed.
	ok, err = svc.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	ok, err = svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowSelf(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)

	alice := createTestUser(t, db, "alice")

	_, err := svc.Follow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestFollowDuplicate(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestFollowUnknownUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)

	alice := createTestUser(t, db, "alice")

	_, err := svc.Follow(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUnfollowNotFollowing(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	assert.ErrorIs(t, svc.Unfollow(context.Background(), alice.ID, bob.ID), ErrNotFollowing)
}

func TestSubscriptions(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	users, total, err := svc.Subscriptions(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	// Most recent subscription first.
	assert.Equal(t, "carol", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	users, total, err = svc.Subscriptions(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestFollowingBatch(t *testing.T) {
	db := openTestDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	following, err := svc.Following(ctx, alice.ID, []uuid.UUID{bob.ID, carol.ID})
	require.NoError(t, err)
	assert.True(t, following[bob.ID])
	assert.False(t, following[carol.ID])
}
