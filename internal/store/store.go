// internal/store/store.go
package store

import (
	"context"
	"errors"

	"crazypuzzle/internal/models"
)

// ErrRoomNotFound is returned for reads and writes against a room id that is
// not (or no longer) present in the store.
var ErrRoomNotFound = errors.New("room not found")

// RoomStore is the narrow interface the lobby and game controllers consume.
// It mirrors the contract of the replicated real-time tree the original data
// lived in: path-scoped overwrites with no merge and no compare-and-set,
// push-based subscriptions that deliver only the latest snapshot, and deep
// copies on every read so concurrent clients race on their own views. Any
// read-modify-write cycle a caller performs is intentionally unguarded.
type RoomStore interface {
	// Subscribe delivers snapshots of one room until cancel is called or the
	// room is deleted. Deletion is signalled by a nil snapshot followed by
	// channel close. Rapid successive writes may be coalesced: a subscriber
	// is only guaranteed to observe the latest state, not every intermediate.
	Subscribe(ctx context.Context, roomID string) (<-chan *models.Room, func())

	// SubscribeAll delivers the full room list on every store change.
	SubscribeAll(ctx context.Context) (<-chan []*models.Room, func())

	Get(ctx context.Context, roomID string) (*models.Room, error)
	List(ctx context.Context) ([]*models.Room, error)
	Put(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, roomID string) error

	// SetFields overwrites only the fields set in the patch. Each field is
	// replaced wholesale; there is no per-element merging.
	SetFields(ctx context.Context, roomID string, fields RoomFields) error

	SetPlayer(ctx context.Context, roomID, userID string, p models.RoomPlayer) error
	RemovePlayer(ctx context.Context, roomID, userID string) error
	SetPendingPlayer(ctx context.Context, roomID, userID string, p models.PendingPlayer) error
	RemovePendingPlayer(ctx context.Context, roomID, userID string) error
}

// RoomFields is a partial room update. Nil pointers mean "leave untouched";
// set pointers overwrite the field entirely, last writer wins.
type RoomFields struct {
	Status       *models.RoomStatus
	Tiles        *[]int
	CurrentTurn  *string
	FlippedTiles *[]int
	StartTime    *int64
	Players      *map[string]models.RoomPlayer
}

// StatusField is a convenience for building a RoomFields patch.
func StatusField(s models.RoomStatus) *models.RoomStatus { return &s }

// StringField is a convenience for building a RoomFields patch.
func StringField(s string) *string { return &s }

// IntsField is a convenience for building a RoomFields patch.
func IntsField(v []int) *[]int { return &v }

// Int64Field is a convenience for building a RoomFields patch.
func Int64Field(v int64) *int64 { return &v }
