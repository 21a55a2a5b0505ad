// internal/models/room_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerIDsAreSorted(t *testing.T) {
	r := &Room{Players: map[string]RoomPlayer{
		"charlie": {}, "alice": {}, "bob": {},
	}}
	assert.Equal(t, []string{"alice", "bob", "charlie"}, r.PlayerIDs())
}

func TestTotalMatched(t *testing.T) {
	r := &Room{Players: map[string]RoomPlayer{
		"a": {MatchedTiles: []int{0, 1}},
		"b": {MatchedTiles: []int{2, 3, 4, 5}},
	}}
	assert.Equal(t, 6, r.TotalMatched())
}

func TestCloneIsDeep(t *testing.T) {
	r := &Room{
		ID:             "r1",
		Players:        map[string]RoomPlayer{"a": {MatchedTiles: []int{0}}},
		PendingPlayers: map[string]PendingPlayer{"b": {Name: "Bea"}},
		Tiles:          []int{1, 1},
		FlippedTiles:   []int{0},
	}
	c := r.Clone()

	c.Players["z"] = RoomPlayer{}
	c.Tiles[0] = 99
	c.FlippedTiles = append(c.FlippedTiles, 1)
	delete(c.PendingPlayers, "b")

	assert.Len(t, r.Players, 1)
	assert.Equal(t, 1, r.Tiles[0])
	assert.Equal(t, []int{0}, r.FlippedTiles)
	assert.Contains(t, r.PendingPlayers, "b")
}

func TestDifficultyTables(t *testing.T) {
	assert.Equal(t, 4, DifficultyEasy.GridSize())
	assert.Equal(t, 6, DifficultyMedium.GridSize())
	assert.Equal(t, 8, DifficultyHard.GridSize())
	assert.Equal(t, 4, Difficulty("bogus").GridSize(), "unknown falls back to easy board")

	assert.Equal(t, 2, DifficultyEasy.MaxPlayers())
	assert.Equal(t, 3, DifficultyMedium.MaxPlayers())
	assert.Equal(t, 4, DifficultyHard.MaxPlayers())

	assert.Equal(t, LayoutGrid, Layout("").OrGrid())
	assert.True(t, Layout("").Valid())
	assert.False(t, Layout("hexagon").Valid())
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Ada", FirstName("Ada Lovelace"))
	assert.Equal(t, "Ada", FirstName("Ada"))
	assert.Equal(t, "Anonymous", FirstName(""))
}
