// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"crazypuzzle/internal/lobby"
	"crazypuzzle/internal/models"
)

// lobbyAction is the client-to-server message on the lobby socket.
type lobbyAction struct {
	Type       string            `json:"type"`
	RoomID     string            `json:"roomId,omitempty"`
	Difficulty models.Difficulty `json:"difficulty,omitempty"`
	Layout     models.Layout     `json:"layout,omitempty"`
}

// lobbyEvent is the server-to-client message on the lobby socket.
type lobbyEvent struct {
	Type   string         `json:"type"`
	RoomID string         `json:"roomId,omitempty"`
	Rooms  []*models.Room `json:"rooms,omitempty"`
}

// LobbyWSHandler serves /lobby/ws. The connection streams the waiting-room
// list on every store change and accepts create/join actions. While the user
// has a join request outstanding the handler watches the full room list for
// the verdict: their id landing in players means approved, their pending
// entry vanishing otherwise means rejected. A stale-room sweep for the
// caller's own rooms runs once per connection.
func (s *Server) LobbyWSHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := s.EnsureGuestUser(w, r)
		if err != nil {
			logger.Warnf("lobby: authentication failed: %v", err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}

		logger.Infof("User %s (%s) connected to lobby", ident.UserID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		ctrl := s.controllerFor(ident)
		ctrl.ReapStaleRooms(ctx, lobby.DefaultStaleAge)

		// pending tracks rooms this connection has asked to join, so verdicts
		// can be derived from list snapshots. Shared with the read pump.
		pending := &pendingJoins{ids: make(map[string]bool)}

		snapshots, unsubscribe := s.Rooms.SubscribeAll(ctx)
		defer unsubscribe()

		go s.lobbyReadPump(ctx, cancel, c, ctrl, pending, logger)

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, pingCancel := context.WithTimeout(ctx, 15*time.Second)
				err := c.Ping(pingCtx)
				pingCancel()
				if err != nil {
					logger.Warnf("lobby: ping to user %s failed: %v", ident.UserID, err)
					return
				}
			case rooms, ok := <-snapshots:
				if !ok {
					return
				}
				for _, ev := range pending.verdicts(ident.UserID, rooms) {
					if err := writeLobbyEvent(ctx, c, ev); err != nil {
						logger.Warnf("lobby: write to user %s failed: %v", ident.UserID, err)
						return
					}
				}
				ev := lobbyEvent{Type: "rooms", Rooms: lobby.WaitingRooms(rooms)}
				if err := writeLobbyEvent(ctx, c, ev); err != nil {
					logger.Warnf("lobby: write to user %s failed: %v", ident.UserID, err)
					return
				}
			}
		}
	}
}

// lobbyReadPump consumes lobby actions until the socket or context dies.
func (s *Server) lobbyReadPump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, ctrl *lobby.Controller, pending *pendingJoins, logger *logrus.Logger) {
	defer cancel()
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("lobby: read error for user %s: %v", ctrl.UserID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var action lobbyAction
		if err := json.Unmarshal(msg, &action); err != nil {
			logger.Warnf("lobby: invalid json from user %s: %v", ctrl.UserID, err)
			continue
		}

		switch action.Type {
		case "create_room":
			if !action.Difficulty.Valid() || !action.Layout.Valid() {
				continue
			}
			roomID, err := ctrl.CreateRoom(ctx, action.Difficulty, action.Layout.OrGrid())
			if err != nil {
				logger.Warnf("lobby: create_room for user %s failed: %v", ctrl.UserID, err)
				continue
			}
			if err := writeLobbyEvent(ctx, c, lobbyEvent{Type: "room_created", RoomID: roomID}); err != nil {
				return
			}
		case "request_join":
			if action.RoomID == "" {
				continue
			}
			if err := ctrl.RequestJoin(ctx, action.RoomID); err != nil {
				logger.Warnf("lobby: request_join for user %s failed: %v", ctrl.UserID, err)
				continue
			}
			pending.add(action.RoomID)
		case "cancel_join":
			if action.RoomID == "" {
				continue
			}
			pending.remove(action.RoomID)
			if err := ctrl.RejectJoin(ctx, action.RoomID, ctrl.UserID); err != nil {
				logger.Warnf("lobby: cancel_join for user %s failed: %v", ctrl.UserID, err)
			}
		default:
			logger.Warnf("lobby: unknown action %q from user %s", action.Type, ctrl.UserID)
		}
	}
}

// pendingJoins tracks outstanding join requests for one lobby connection.
// The value records whether a snapshot has confirmed the pending entry yet.
type pendingJoins struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (p *pendingJoins) add(roomID string) {
	p.mu.Lock()
	p.ids[roomID] = false
	p.mu.Unlock()
}

func (p *pendingJoins) remove(roomID string) {
	p.mu.Lock()
	delete(p.ids, roomID)
	p.mu.Unlock()
}

// verdicts inspects a full room-list snapshot and resolves any tracked
// requests: approved once the user is a player, rejected once a previously
// seen pending entry is gone without a join (including the room disappearing
// entirely). A snapshot that predates the request itself, where the user is
// not visible yet, resolves nothing.
func (p *pendingJoins) verdicts(userID string, rooms []*models.Room) []lobbyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return nil
	}

	byID := make(map[string]*models.Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}

	var out []lobbyEvent
	for roomID, seenPending := range p.ids {
		room, exists := byID[roomID]
		if exists {
			if _, joined := room.Players[userID]; joined {
				out = append(out, lobbyEvent{Type: "join_approved", RoomID: roomID})
				delete(p.ids, roomID)
				continue
			}
			if _, waiting := room.PendingPlayers[userID]; waiting {
				p.ids[roomID] = true
				continue
			}
			if !seenPending {
				continue
			}
		}
		out = append(out, lobbyEvent{Type: "join_rejected", RoomID: roomID})
		delete(p.ids, roomID)
	}
	return out
}

func writeLobbyEvent(ctx context.Context, c *websocket.Conn, ev lobbyEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
