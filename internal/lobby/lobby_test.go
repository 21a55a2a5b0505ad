// internal/lobby/lobby_test.go
package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crazypuzzle/internal/models"
	"crazypuzzle/internal/store"
)

func newTestController(st store.RoomStore, userID, name string) *Controller {
	return NewController(st, userID, name)
}

func TestCreateRoomSeedsHostAsNotReady(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	c := newTestController(st, "alice", "Alice")

	roomID, err := c.CreateRoom(ctx, models.DifficultyMedium, models.LayoutGrid)
	require.NoError(t, err)
	require.NotEmpty(t, roomID)

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "alice", room.HostID)
	assert.Equal(t, models.RoomWaiting, room.Status)
	assert.Equal(t, models.DifficultyMedium, room.Difficulty)
	require.Contains(t, room.Players, "alice")
	assert.False(t, room.Players["alice"].Ready, "the creator readies up explicitly")
	assert.NotZero(t, room.CreatedAt)
}

func TestRequestJoinAddsPendingEntry(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	host := newTestController(st, "alice", "Alice")
	roomID, err := host.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	joiner := newTestController(st, "bob", "Bob")
	require.NoError(t, joiner.RequestJoin(ctx, roomID))

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	require.Contains(t, room.PendingPlayers, "bob")
	assert.Equal(t, "Bob", room.PendingPlayers["bob"].Name)
}

func TestRequestJoinSilentlySkipsFullRoom(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	host := newTestController(st, "alice", "Alice")
	roomID, err := host.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	// Easy caps at two players; fill the second slot.
	require.NoError(t, st.SetPlayer(ctx, roomID, "bob", models.RoomPlayer{Name: "Bob", Ready: true}))

	late := newTestController(st, "carol", "Carol")
	require.NoError(t, late.RequestJoin(ctx, roomID))

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	assert.NotContains(t, room.PendingPlayers, "carol")
}

func TestApproveJoinPromotesPendingPlayer(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	host := newTestController(st, "alice", "Alice")
	roomID, err := host.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	joiner := newTestController(st, "bob", "Bob")
	require.NoError(t, joiner.RequestJoin(ctx, roomID))
	require.NoError(t, host.ApproveJoin(ctx, roomID, "bob"))

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	require.Contains(t, room.Players, "bob")
	assert.True(t, room.Players["bob"].Ready, "approved players arrive ready")
	assert.Zero(t, room.Players["bob"].Score)
	assert.NotContains(t, room.PendingPlayers, "bob")
}

func TestApproveJoinRechecksCapacity(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	host := newTestController(st, "alice", "Alice")
	roomID, err := host.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	joiner := newTestController(st, "bob", "Bob")
	require.NoError(t, joiner.RequestJoin(ctx, roomID))

	// The room fills before the host gets around to approving.
	require.NoError(t, st.SetPlayer(ctx, roomID, "dave", models.RoomPlayer{Name: "Dave", Ready: true}))

	require.NoError(t, host.ApproveJoin(ctx, roomID, "bob"))

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	assert.NotContains(t, room.Players, "bob", "late approval must not exceed capacity")
	assert.NotContains(t, room.PendingPlayers, "bob", "stale request is cleaned up")
}

func TestApproveJoinUnknownPendingIsNoop(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	host := newTestController(st, "alice", "Alice")
	roomID, err := host.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	require.NoError(t, host.ApproveJoin(ctx, roomID, "ghost"))

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	assert.NotContains(t, room.Players, "ghost")
}

func TestRejectJoinDropsPendingEntry(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()
	host := newTestController(st, "alice", "Alice")
	roomID, err := host.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	joiner := newTestController(st, "bob", "Bob")
	require.NoError(t, joiner.RequestJoin(ctx, roomID))
	require.NoError(t, host.RejectJoin(ctx, roomID, "bob"))

	room, err := st.Get(ctx, roomID)
	require.NoError(t, err)
	assert.NotContains(t, room.PendingPlayers, "bob")
}

func TestWaitingRoomsFilter(t *testing.T) {
	rooms := []*models.Room{
		{ID: "a", Status: models.RoomWaiting},
		{ID: "b", Status: models.RoomPlaying},
		{ID: "c", Status: models.RoomFinished},
		{ID: "d", Status: models.RoomWaiting},
	}
	waiting := WaitingRooms(rooms)
	require.Len(t, waiting, 2)
	assert.Equal(t, "a", waiting[0].ID)
	assert.Equal(t, "d", waiting[1].ID)
}

func TestListWaitingRoomsStreamsChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemoryRoomStore()
	c := newTestController(st, "alice", "Alice")

	lists, stop := c.ListWaitingRooms(ctx)
	defer stop()

	rooms := <-lists
	assert.Empty(t, rooms)

	roomID, err := c.CreateRoom(ctx, models.DifficultyEasy, models.LayoutGrid)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case rooms := <-lists:
			return len(rooms) == 1 && rooms[0].ID == roomID
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestReapStaleRoomsOnlySweepsOwnOldRooms(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryRoomStore()

	old := time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, st.Put(ctx, &models.Room{
		ID: "mine-old", HostID: "alice", Status: models.RoomWaiting, CreatedAt: old,
		Players: map[string]models.RoomPlayer{"alice": {Name: "Alice"}},
	}))
	require.NoError(t, st.Put(ctx, &models.Room{
		ID: "mine-fresh", HostID: "alice", Status: models.RoomWaiting, CreatedAt: time.Now().UnixMilli(),
		Players: map[string]models.RoomPlayer{"alice": {Name: "Alice"}},
	}))
	require.NoError(t, st.Put(ctx, &models.Room{
		ID: "theirs-old", HostID: "bob", Status: models.RoomWaiting, CreatedAt: old,
		Players: map[string]models.RoomPlayer{"bob": {Name: "Bob"}},
	}))

	c := newTestController(st, "alice", "Alice")
	c.ReapStaleRooms(ctx, DefaultStaleAge)

	_, err := st.Get(ctx, "mine-old")
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
	_, err = st.Get(ctx, "mine-fresh")
	assert.NoError(t, err)
	_, err = st.Get(ctx, "theirs-old")
	assert.NoError(t, err, "other hosts' rooms are out of scope")
}
