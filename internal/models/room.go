// internal/models/room.go
package models

import "sort"

// Difficulty selects the board size for a game.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// GridSize returns the side length of the square board for the difficulty.
// Unknown values fall back to the easy board.
func (d Difficulty) GridSize() int {
	switch d {
	case DifficultyMedium:
		return 6
	case DifficultyHard:
		return 8
	default:
		return 4
	}
}

// Valid reports whether d is one of the known difficulty values.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// MaxPlayers is the default per-difficulty room capacity (2/3/4).
// Callers may substitute their own capacity policy; this is only the default.
func (d Difficulty) MaxPlayers() int {
	switch d {
	case DifficultyMedium:
		return 3
	case DifficultyHard:
		return 4
	default:
		return 2
	}
}

// Layout selects the board arrangement. Only the grid layout is playable;
// circle and diamond are accepted but remain placeholders.
type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutCircle  Layout = "circle"
	LayoutDiamond Layout = "diamond"
)

// OrGrid normalizes an absent layout to grid, matching how older room
// records without a layout field are read.
func (l Layout) OrGrid() Layout {
	if l == "" {
		return LayoutGrid
	}
	return l
}

// Valid reports whether l is a known layout value. The empty string is
// tolerated and treated as grid.
func (l Layout) Valid() bool {
	return l == "" || l == LayoutGrid || l == LayoutCircle || l == LayoutDiamond
}

// RoomStatus is the three-state room lifecycle.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// RoomPlayer is one joined player's slice of the shared room record.
type RoomPlayer struct {
	Name         string `json:"name"`
	Ready        bool   `json:"ready"`
	Score        int    `json:"score"`
	MatchedTiles []int  `json:"matchedTiles"`
}

// PendingPlayer is a join request awaiting host approval.
type PendingPlayer struct {
	Name string `json:"name"`
}

// Room is the shared record coordinating one multiplayer match. Every
// connected client for the room holds its own snapshot and races plain
// overwrites against everyone else's; nothing here is lock-protected
// beyond the store's per-write atomicity.
type Room struct {
	ID         string     `json:"id"`
	HostID     string     `json:"hostId"`
	HostName   string     `json:"hostName"`
	Difficulty Difficulty `json:"difficulty"`
	Layout     Layout     `json:"layout,omitempty"`
	Status     RoomStatus `json:"status"`
	CreatedAt  int64      `json:"createdAt"`

	Players        map[string]RoomPlayer    `json:"players"`
	PendingPlayers map[string]PendingPlayer `json:"pendingPlayers,omitempty"`

	Tiles        []int  `json:"tiles,omitempty"`
	CurrentTurn  string `json:"currentTurn,omitempty"`
	FlippedTiles []int  `json:"flippedTiles,omitempty"`
	StartTime    int64  `json:"startTime,omitempty"`
}

// PlayerIDs returns the player ids in ascending lexicographic order. Turn
// assignment and round-robin advancement both enumerate players this way so
// every client derives the same ordering from the same snapshot.
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalMatched sums the matched-tile counts across all players.
func (r *Room) TotalMatched() int {
	total := 0
	for _, p := range r.Players {
		total += len(p.MatchedTiles)
	}
	return total
}

// Clone returns a deep copy so each subscriber mutates its own view.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Players = make(map[string]RoomPlayer, len(r.Players))
	for id, p := range r.Players {
		cp := p
		cp.MatchedTiles = append([]int(nil), p.MatchedTiles...)
		out.Players[id] = cp
	}
	if r.PendingPlayers != nil {
		out.PendingPlayers = make(map[string]PendingPlayer, len(r.PendingPlayers))
		for id, p := range r.PendingPlayers {
			out.PendingPlayers[id] = p
		}
	}
	out.Tiles = append([]int(nil), r.Tiles...)
	out.FlippedTiles = append([]int(nil), r.FlippedTiles...)
	return &out
}
