// internal/game/session.go
package game

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"crazypuzzle/internal/models"
	"crazypuzzle/internal/score"
	"crazypuzzle/internal/store"
)

// DefaultFlipDelay is how long both tiles of a failed pair stay visible
// before the buffer clears and the turn passes.
const DefaultFlipDelay = time.Second

// Signal tells the caller how to react to an observed room snapshot.
type Signal int

const (
	// SignalNone means keep going.
	SignalNone Signal = iota
	// SignalRemoved means this user's id is no longer a player key: the host
	// removed them. A normal exit back to the lobby, not an error.
	SignalRemoved
	// SignalRoomGone means the room record was deleted out from under us.
	// Also a normal exit.
	SignalRoomGone
)

// Session binds one connected user to one room and implements the client
// side of the coordination contract. All game-rule checks here are advisory:
// they gate what this client writes, and nothing stops a different client
// from writing something else. The store's last-writer-wins semantics are
// the only arbiter.
type Session struct {
	Store  store.RoomStore
	Scores *score.Aggregator

	RoomID string
	UserID string

	// FlipDelay overrides DefaultFlipDelay; useful in tests.
	FlipDelay time.Duration

	mu   sync.Mutex
	last *models.Room
}

// NewSession creates a session for a user already present in the room.
func NewSession(st store.RoomStore, agg *score.Aggregator, roomID, userID string) *Session {
	return &Session{
		Store:     st,
		Scores:    agg,
		RoomID:    roomID,
		UserID:    userID,
		FlipDelay: DefaultFlipDelay,
	}
}

func (s *Session) snapshot() *models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) flipDelay() time.Duration {
	if s.FlipDelay > 0 {
		return s.FlipDelay
	}
	return DefaultFlipDelay
}

// Observe ingests a room snapshot from the subscription, re-deriving
// whatever this client is responsible for. The host's session triggers the
// game start once everyone is ready; every session watches for its own id
// disappearing from players.
func (s *Session) Observe(ctx context.Context, room *models.Room) Signal {
	s.mu.Lock()
	s.last = room
	s.mu.Unlock()

	if room == nil {
		return SignalRoomGone
	}
	if room.Players != nil {
		if _, in := room.Players[s.UserID]; !in {
			return SignalRemoved
		}
	}

	// Only the host starts the game, to keep every client from racing the
	// same transition. A convention, not a guarantee.
	if room.Status == models.RoomWaiting && room.HostID == s.UserID && AllReady(room) {
		if err := s.StartGame(ctx); err != nil {
			log.Warnf("room %s: host failed to start game: %v", s.RoomID, err)
		}
	}
	return SignalNone
}

// AllReady reports whether the room has at least two players and every one
// of them has readied up.
func AllReady(room *models.Room) bool {
	if len(room.Players) < 2 {
		return false
	}
	for _, p := range room.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// MarkReady flips this player's ready flag in the shared record.
func (s *Session) MarkReady(ctx context.Context) error {
	room, err := s.Store.Get(ctx, s.RoomID)
	if err != nil {
		return err
	}
	p, ok := room.Players[s.UserID]
	if !ok {
		return nil
	}
	p.Ready = true
	return s.Store.SetPlayer(ctx, s.RoomID, s.UserID, p)
}

// StartGame performs the waiting→playing transition in one field write: a
// fresh paired deck, zeroed scores and matched sets, the first player (in id
// order) on turn, a start timestamp, and an empty flip buffer.
func (s *Session) StartGame(ctx context.Context) error {
	room, err := s.Store.Get(ctx, s.RoomID)
	if err != nil {
		return err
	}
	if room.Status != models.RoomWaiting {
		return nil
	}

	deck := NewDeck(room.Difficulty)
	players := make(map[string]models.RoomPlayer, len(room.Players))
	for id, p := range room.Players {
		p.Score = 0
		p.MatchedTiles = []int{}
		players[id] = p
	}
	ids := room.PlayerIDs()
	if len(ids) == 0 {
		return nil
	}

	return s.Store.SetFields(ctx, s.RoomID, store.RoomFields{
		Tiles:        &deck,
		CurrentTurn:  store.StringField(ids[0]),
		Players:      &players,
		Status:       store.StatusField(models.RoomPlaying),
		StartTime:    store.Int64Field(time.Now().UnixMilli()),
		FlippedTiles: store.IntsField([]int{}),
	})
}

// FlipTile handles a tile click against the last observed snapshot. The
// click is ignored unless it is this player's turn, the game is in progress,
// and the tile is neither already face-up nor already matched by this
// player. The flip is written through immediately so every client sees it;
// when it completes a pair the same actor resolves match or no-match.
//
// The flip buffer is shared room state rather than per-player, so two
// clients flipping under adverse network ordering can race it; turn-gating
// makes that rare but does not prevent it.
func (s *Session) FlipTile(ctx context.Context, index int) error {
	room := s.snapshot()
	if room == nil || room.Status != models.RoomPlaying || room.CurrentTurn != s.UserID {
		return nil
	}
	if index < 0 || index >= len(room.Tiles) {
		return nil
	}
	if containsInt(room.FlippedTiles, index) || len(room.FlippedTiles) >= 2 {
		return nil
	}
	me, ok := room.Players[s.UserID]
	if !ok || containsInt(me.MatchedTiles, index) {
		return nil
	}

	flipped := append(append([]int(nil), room.FlippedTiles...), index)
	if err := s.Store.SetFields(ctx, s.RoomID, store.RoomFields{FlippedTiles: &flipped}); err != nil {
		return err
	}
	if len(flipped) < 2 {
		return nil
	}

	if ResolvePair(room.Tiles, flipped) == Match {
		return s.applyMatch(ctx, room, me, flipped)
	}
	s.scheduleTurnAdvance(room)
	return nil
}

// applyMatch credits the pair to the acting player, then either finishes the
// game (when every tile is accounted for) or clears the buffer for the same
// player's bonus turn.
func (s *Session) applyMatch(ctx context.Context, room *models.Room, me models.RoomPlayer, flipped []int) error {
	me.MatchedTiles = append(append([]int(nil), me.MatchedTiles...), flipped[0], flipped[1])
	me.Score += 10
	if err := s.Store.SetPlayer(ctx, s.RoomID, s.UserID, me); err != nil {
		return err
	}

	empty := []int{}
	if room.TotalMatched()+2 >= len(room.Tiles) {
		finals := make(map[string]int, len(room.Players))
		for id, p := range room.Players {
			finals[id] = p.Score
		}
		finals[s.UserID] = me.Score
		s.Scores.AwardFinalScores(ctx, finals)

		return s.Store.SetFields(ctx, s.RoomID, store.RoomFields{
			Status:       store.StatusField(models.RoomFinished),
			FlippedTiles: &empty,
		})
	}
	// A match grants an extra turn; currentTurn stays put.
	return s.Store.SetFields(ctx, s.RoomID, store.RoomFields{FlippedTiles: &empty})
}

// scheduleTurnAdvance leaves a failed pair visible for the flip delay, then
// clears the buffer and hands the turn to the next player id in round-robin
// order over the snapshot's player enumeration.
func (s *Session) scheduleTurnAdvance(room *models.Room) {
	ids := room.PlayerIDs()
	next := ""
	for i, id := range ids {
		if id == room.CurrentTurn {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	if next == "" && len(ids) > 0 {
		next = ids[0]
	}

	time.AfterFunc(s.flipDelay(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		empty := []int{}
		err := s.Store.SetFields(ctx, s.RoomID, store.RoomFields{
			CurrentTurn:  store.StringField(next),
			FlippedTiles: &empty,
		})
		if err != nil {
			log.Debugf("room %s: turn advance dropped: %v", s.RoomID, err)
		}
	})
}

// Leave deletes this player's entry; if that empties the room the record
// itself is deleted too.
func (s *Session) Leave(ctx context.Context) error {
	if err := s.Store.RemovePlayer(ctx, s.RoomID, s.UserID); err != nil {
		return err
	}
	room, err := s.Store.Get(ctx, s.RoomID)
	if err != nil {
		return nil
	}
	if len(room.Players) == 0 {
		return s.Store.Delete(ctx, s.RoomID)
	}
	return nil
}

// RemovePeer lets the host eject another player while the room is still
// waiting. Host-only and waiting-only by convention; the ejected player's
// own session notices the disappearance and exits to the lobby.
func (s *Session) RemovePeer(ctx context.Context, userID string) error {
	room := s.snapshot()
	if room == nil || room.Status != models.RoomWaiting || room.HostID != s.UserID || userID == s.UserID {
		return nil
	}
	return s.Store.RemovePlayer(ctx, s.RoomID, userID)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
