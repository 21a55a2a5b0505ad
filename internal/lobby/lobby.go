// internal/lobby/lobby.go
package lobby

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"crazypuzzle/internal/models"
	"crazypuzzle/internal/store"
)

// DefaultStaleAge is how old a room must be before the opportunistic sweep
// deletes it.
const DefaultStaleAge = 30 * time.Minute

// CapacityPolicy decides the player cap for a room. Capacity has flip-flopped
// historically between a fixed per-difficulty cap and "unlimited, host
// decides"; it is a pluggable policy so either behavior is one assignment
// away.
type CapacityPolicy func(d models.Difficulty) int

// DefaultCapacity is the fixed per-difficulty cap (2/3/4 for easy/medium/hard).
func DefaultCapacity(d models.Difficulty) int { return d.MaxPlayers() }

// Controller performs lobby operations for one signed-in user against the
// shared room store. Nothing it holds locally is authoritative; every result
// is whatever the store echoes back through subscriptions.
type Controller struct {
	Store    store.RoomStore
	Capacity CapacityPolicy

	UserID   string
	UserName string
}

// NewController builds a lobby controller with the default capacity policy.
func NewController(st store.RoomStore, userID, userName string) *Controller {
	return &Controller{
		Store:    st,
		Capacity: DefaultCapacity,
		UserID:   userID,
		UserName: userName,
	}
}

// WaitingRooms filters a room-list snapshot down to joinable rooms.
func WaitingRooms(rooms []*models.Room) []*models.Room {
	out := make([]*models.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Status == models.RoomWaiting {
			out = append(out, r)
		}
	}
	return out
}

// ListWaitingRooms subscribes to the room collection and yields the waiting
// subset on every store change, until cancel is called.
func (c *Controller) ListWaitingRooms(ctx context.Context) (<-chan []*models.Room, func()) {
	in, cancel := c.Store.SubscribeAll(ctx)
	out := make(chan []*models.Room, 1)
	go func() {
		defer close(out)
		for rooms := range in {
			waiting := WaitingRooms(rooms)
			// Latest-value channel: drop a stale undelivered list.
			select {
			case <-out:
			default:
			}
			out <- waiting
		}
	}()
	return out, cancel
}

// CreateRoom allocates a room with the creator as sole (not ready) player and
// returns the new room id. Any difficulty/layout enum value is accepted.
func (c *Controller) CreateRoom(ctx context.Context, difficulty models.Difficulty, layout models.Layout) (string, error) {
	room := &models.Room{
		ID:         uuid.NewString(),
		HostID:     c.UserID,
		HostName:   c.UserName,
		Difficulty: difficulty,
		Layout:     layout,
		Status:     models.RoomWaiting,
		CreatedAt:  time.Now().UnixMilli(),
		Players: map[string]models.RoomPlayer{
			c.UserID: {Name: c.UserName, Ready: false},
		},
	}
	if err := c.Store.Put(ctx, room); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	return room.ID, nil
}

// RequestJoin writes the caller into the room's pendingPlayers, awaiting host
// approval. If players+pending already meet the capacity policy this is a
// silent no-op: the join affordance is expected to be disabled already.
func (c *Controller) RequestJoin(ctx context.Context, roomID string) error {
	room, err := c.Store.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if len(room.Players)+len(room.PendingPlayers) >= c.Capacity(room.Difficulty) {
		return nil
	}
	return c.Store.SetPendingPlayer(ctx, roomID, c.UserID, models.PendingPlayer{Name: c.UserName})
}

// ApproveJoin moves a pending entry into players with ready:true and a zeroed
// score. Host-only by convention, not enforced by the store. Capacity is
// re-checked here: if the room filled in the interim the pending entry is
// deleted instead, exactly as a reject.
func (c *Controller) ApproveJoin(ctx context.Context, roomID, userID string) error {
	room, err := c.Store.Get(ctx, roomID)
	if err != nil {
		return err
	}
	pending, ok := room.PendingPlayers[userID]
	if !ok {
		return nil
	}
	if len(room.Players) >= c.Capacity(room.Difficulty) {
		log.Infof("room %s full at approval time, rejecting pending player %s", roomID, userID)
		return c.Store.RemovePendingPlayer(ctx, roomID, userID)
	}
	if err := c.Store.SetPlayer(ctx, roomID, userID, models.RoomPlayer{
		Name:         pending.Name,
		Ready:        true,
		Score:        0,
		MatchedTiles: []int{},
	}); err != nil {
		return err
	}
	return c.Store.RemovePendingPlayer(ctx, roomID, userID)
}

// RejectJoin deletes a pending join request. Host-only by convention.
func (c *Controller) RejectJoin(ctx context.Context, roomID, userID string) error {
	return c.Store.RemovePendingPlayer(ctx, roomID, userID)
}

// DeleteRoom removes the room record entirely. Host-only by convention.
func (c *Controller) DeleteRoom(ctx context.Context, roomID string) error {
	return c.Store.Delete(ctx, roomID)
}

// ReapStaleRooms deletes rooms older than maxAge that were created by the
// current user. Scoping the sweep to own rooms keeps it inside ordinary
// permissions. Failures are swallowed: this is housekeeping, not a guarantee.
func (c *Controller) ReapStaleRooms(ctx context.Context, maxAge time.Duration) {
	rooms, err := c.Store.List(ctx)
	if err != nil {
		log.Debugf("stale room sweep skipped: %v", err)
		return
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	for _, room := range rooms {
		if room.HostID != c.UserID || room.CreatedAt > cutoff {
			continue
		}
		if err := c.Store.Delete(ctx, room.ID); err != nil {
			log.Debugf("skipping stale room %s: %v", room.ID, err)
		}
	}
}
