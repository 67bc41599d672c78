package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-service/internal/models"
)

func newBlockFixture(t *testing.T) (*BlockService, *memBlockRepo, []uint) {
	t.Helper()

	users := newMemUserRepo()
	blocks := newMemBlockRepo(users)
	ctx := context.Background()

	var ids []uint
	for _, name := range []string{"alice", "bob", "carol"} {
		u := &models.User{Username: name, Email: name + "@example.com"}
		require.NoError(t, users.Create(ctx, u))
		ids = append(ids, u.ID)
	}

	return NewBlockService(users, blocks), blocks, ids
}

func TestBlockRejectsSelf(t *testing.T) {
	svc, _, ids := newBlockFixture(t)

	err := svc.Block(context.Background(), ids[0], ids[0])
	assert.ErrorIs(t, err, ErrSelfBlock)
}

func TestBlockRejectsUnknownTarget(t *testing.T) {
	svc, _, ids := newBlockFixture(t)

	err := svc.Block(context.Background(), ids[0], 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBlockUnblockRoundTrip(t *testing.T) {
	svc, blocks, ids := newBlockFixture(t)
	alice, bob := ids[0], ids[1]
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, alice, bob))

	blocked, err := blocks.BlockedIDs(ctx, alice)
	require.NoError(t, err)
	assert.Contains(t, blocked, bob)

	// The edge is one-directional: bob has not blocked alice.
	reverse, err := blocks.BlockedIDs(ctx, bob)
	require.NoError(t, err)
	assert.NotContains(t, reverse, alice)

	require.NoError(t, svc.Unblock(ctx, alice, bob))
	blocked, err = blocks.BlockedIDs(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func TestBlockIsIdempotent(t *testing.T) {
	svc, _, ids := newBlockFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, ids[0], ids[1]))
	require.NoError(t, svc.Block(ctx, ids[0], ids[1]))

	list, err := svc.ListBlocked(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnblockMissingEdgeIsNoop(t *testing.T) {
	svc, _, ids := newBlockFixture(t)

	assert.NoError(t, svc.Unblock(context.Background(), ids[0], ids[1]))
}

func TestListBlocked(t *testing.T) {
	svc, _, ids := newBlockFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, ids[0], ids[1]))
	require.NoError(t, svc.Block(ctx, ids[0], ids[2]))

	list, err := svc.ListBlocked(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, list, 2)

	names := map[string]bool{}
	for _, u := range list {
		names[u.Username] = true
	}
	assert.True(t, names["bob"] && names["carol"])

	// An empty list comes back as an empty slice, not nil, so the handler
	// serializes [] rather than null.
	empty, err := svc.ListBlocked(ctx, ids[1])
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
