// internal/handlers/lobby_ws_test.go
package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crazypuzzle/internal/models"
)

func trackedJoins(ids ...string) *pendingJoins {
	p := &pendingJoins{ids: make(map[string]bool)}
	for _, id := range ids {
		p.add(id)
	}
	return p
}

func TestVerdictsApprovedWhenUserBecomesPlayer(t *testing.T) {
	p := trackedJoins("r1")
	rooms := []*models.Room{{
		ID:      "r1",
		Players: map[string]models.RoomPlayer{"bob": {Name: "Bob"}},
	}}

	events := p.verdicts("bob", rooms)
	require.Len(t, events, 1)
	assert.Equal(t, "join_approved", events[0].Type)
	assert.Equal(t, "r1", events[0].RoomID)

	assert.Empty(t, p.verdicts("bob", rooms), "a verdict is delivered once")
}

func TestVerdictsRejectedAfterPendingEntryVanishes(t *testing.T) {
	p := trackedJoins("r1")

	// First snapshot confirms the pending entry.
	pending := []*models.Room{{
		ID:             "r1",
		Players:        map[string]models.RoomPlayer{"alice": {Name: "Alice"}},
		PendingPlayers: map[string]models.PendingPlayer{"bob": {Name: "Bob"}},
	}}
	assert.Empty(t, p.verdicts("bob", pending))

	// Then the host rejects: pending entry gone, not a player.
	rejected := []*models.Room{{
		ID:      "r1",
		Players: map[string]models.RoomPlayer{"alice": {Name: "Alice"}},
	}}
	events := p.verdicts("bob", rejected)
	require.Len(t, events, 1)
	assert.Equal(t, "join_rejected", events[0].Type)
}

func TestVerdictsIgnoreSnapshotPredatingRequest(t *testing.T) {
	p := trackedJoins("r1")

	// Snapshot from before the pending write landed: no verdict yet.
	stale := []*models.Room{{
		ID:      "r1",
		Players: map[string]models.RoomPlayer{"alice": {Name: "Alice"}},
	}}
	assert.Empty(t, p.verdicts("bob", stale))
}

func TestVerdictsRejectedWhenRoomDisappears(t *testing.T) {
	p := trackedJoins("r1")

	events := p.verdicts("bob", nil)
	require.Len(t, events, 1)
	assert.Equal(t, "join_rejected", events[0].Type)
	assert.Equal(t, "r1", events[0].RoomID)
}

func TestCancelJoinStopsTracking(t *testing.T) {
	p := trackedJoins("r1")
	p.remove("r1")

	approved := []*models.Room{{
		ID:      "r1",
		Players: map[string]models.RoomPlayer{"bob": {Name: "Bob"}},
	}}
	assert.Empty(t, p.verdicts("bob", approved))
}
