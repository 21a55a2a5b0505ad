// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"crazypuzzle/internal/models"
)

// MemoryRoomStore keeps the room tree in process memory. The mutex makes each
// individual write atomic, which is all the backing service guaranteed; it
// deliberately does not serialize callers' read-then-write sequences, so the
// observable races of the replicated original are preserved.
type MemoryRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*models.Room

	nextSubID   int
	roomSubs    map[string]map[int]*roomSub
	roomListSub map[int]*listSub
}

type roomSub struct {
	ch chan *models.Room
}

type listSub struct {
	ch chan []*models.Room
}

// NewMemoryRoomStore returns an empty in-memory store.
func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{
		rooms:       make(map[string]*models.Room),
		roomSubs:    make(map[string]map[int]*roomSub),
		roomListSub: make(map[int]*listSub),
	}
}

// Subscribe registers a latest-value watcher for one room. The channel has
// capacity 1; a pending undelivered snapshot is replaced by the newer one.
func (s *MemoryRoomStore) Subscribe(ctx context.Context, roomID string) (<-chan *models.Room, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	sub := &roomSub{ch: make(chan *models.Room, 1)}
	if s.roomSubs[roomID] == nil {
		s.roomSubs[roomID] = make(map[int]*roomSub)
	}
	s.roomSubs[roomID][id] = sub

	// Initial snapshot, mirroring a subscription's immediate first callback.
	if room, ok := s.rooms[roomID]; ok {
		sub.push(room.Clone())
	}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.roomSubs[roomID]; ok {
			if _, live := subs[id]; live {
				delete(subs, id)
				close(sub.ch)
			}
			if len(subs) == 0 {
				delete(s.roomSubs, roomID)
			}
		}
	}
	return sub.ch, cancel
}

// SubscribeAll registers a watcher over the whole room collection.
func (s *MemoryRoomStore) SubscribeAll(ctx context.Context) (<-chan []*models.Room, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	sub := &listSub{ch: make(chan []*models.Room, 1)}
	s.roomListSub[id] = sub
	sub.push(s.snapshotAllLocked())

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, live := s.roomListSub[id]; live {
			delete(s.roomListSub, id)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Get returns a deep copy of the room or ErrRoomNotFound.
func (s *MemoryRoomStore) Get(ctx context.Context, roomID string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

// List returns a one-shot deep copy of every room in the store.
func (s *MemoryRoomStore) List(ctx context.Context) ([]*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotAllLocked(), nil
}

// Put overwrites the entire room record.
func (s *MemoryRoomStore) Put(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room.Clone()
	s.notifyLocked(room.ID)
	return nil
}

// Delete removes the room. Subscribers receive a nil snapshot and are closed.
func (s *MemoryRoomStore) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	delete(s.rooms, roomID)

	for _, sub := range s.roomSubs[roomID] {
		sub.push(nil)
		close(sub.ch)
	}
	delete(s.roomSubs, roomID)

	s.notifyListLocked()
	return nil
}

// SetFields applies a partial overwrite to the room record.
func (s *MemoryRoomStore) SetFields(ctx context.Context, roomID string, fields RoomFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if fields.Status != nil {
		room.Status = *fields.Status
	}
	if fields.Tiles != nil {
		room.Tiles = append([]int(nil), (*fields.Tiles)...)
	}
	if fields.CurrentTurn != nil {
		room.CurrentTurn = *fields.CurrentTurn
	}
	if fields.FlippedTiles != nil {
		room.FlippedTiles = append([]int(nil), (*fields.FlippedTiles)...)
	}
	if fields.StartTime != nil {
		room.StartTime = *fields.StartTime
	}
	if fields.Players != nil {
		players := make(map[string]models.RoomPlayer, len(*fields.Players))
		for id, p := range *fields.Players {
			cp := p
			cp.MatchedTiles = append([]int(nil), p.MatchedTiles...)
			players[id] = cp
		}
		room.Players = players
	}
	s.notifyLocked(roomID)
	return nil
}

// SetPlayer overwrites one player's entry.
func (s *MemoryRoomStore) SetPlayer(ctx context.Context, roomID, userID string, p models.RoomPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.Players == nil {
		room.Players = make(map[string]models.RoomPlayer)
	}
	p.MatchedTiles = append([]int(nil), p.MatchedTiles...)
	room.Players[userID] = p
	s.notifyLocked(roomID)
	return nil
}

// RemovePlayer deletes one player's entry. Removing an absent player is a
// no-op, matching a delete of a path that does not exist.
func (s *MemoryRoomStore) RemovePlayer(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	delete(room.Players, userID)
	s.notifyLocked(roomID)
	return nil
}

// SetPendingPlayer overwrites one pending join request.
func (s *MemoryRoomStore) SetPendingPlayer(ctx context.Context, roomID, userID string, p models.PendingPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.PendingPlayers == nil {
		room.PendingPlayers = make(map[string]models.PendingPlayer)
	}
	room.PendingPlayers[userID] = p
	s.notifyLocked(roomID)
	return nil
}

// RemovePendingPlayer deletes one pending join request.
func (s *MemoryRoomStore) RemovePendingPlayer(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	delete(room.PendingPlayers, userID)
	s.notifyLocked(roomID)
	return nil
}

func (sub *roomSub) push(room *models.Room) {
	// Replace any undelivered snapshot with the newer one.
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- room
}

func (sub *listSub) push(rooms []*models.Room) {
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- rooms
}

func (s *MemoryRoomStore) snapshotAllLocked() []*models.Room {
	out := make([]*models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room.Clone())
	}
	return out
}

func (s *MemoryRoomStore) notifyLocked(roomID string) {
	if room, ok := s.rooms[roomID]; ok {
		for _, sub := range s.roomSubs[roomID] {
			sub.push(room.Clone())
		}
	}
	s.notifyListLocked()
}

func (s *MemoryRoomStore) notifyListLocked() {
	for _, sub := range s.roomListSub {
		sub.push(s.snapshotAllLocked())
	}
}
