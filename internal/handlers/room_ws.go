// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"crazypuzzle/internal/game"
	"crazypuzzle/internal/lobby"
	"crazypuzzle/internal/models"
)

// roomAction is the client-to-server message on a room socket.
type roomAction struct {
	Type   string `json:"type"`
	Tile   *int   `json:"tile,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// roomEvent is the server-to-client message on a room socket.
type roomEvent struct {
	Type string       `json:"type"`
	Room *models.Room `json:"room,omitempty"`
}

// RoomWSHandler serves /room/ws/{roomID}. Each connection gets a game
// session bound to the authenticated user and a subscription to the room
// record: every store change streams down as a "room" event, and client
// actions (ready, flip, approve, reject, remove_player, leave) feed the
// session. Removal and room deletion are surfaced as terminal events so the
// client returns to the lobby cleanly.
func (s *Server) RoomWSHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.TrimPrefix(r.URL.Path, "/room/ws/")
		if roomID == "" || strings.Contains(roomID, "/") {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		// Authenticate before the upgrade so a fresh guest cookie can still
		// be set on the handshake response.
		ident, err := s.EnsureGuestUser(w, r)
		if err != nil {
			logger.Warnf("room %s: authentication failed: %v", roomID, err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"room"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "room" {
			c.Close(BadSubprotocolError, "client must speak the room subprotocol")
			return
		}

		if _, err := s.Rooms.Get(r.Context(), roomID); err != nil {
			c.Close(InvalidRoomIDError, "room does not exist")
			return
		}

		logger.Infof("User %s (%s) connected to room %s", ident.UserID, r.RemoteAddr, roomID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := game.NewSession(s.Rooms, s.Scores, roomID, ident.UserID)
		ctrl := s.controllerFor(ident)

		snapshots, unsubscribe := s.Rooms.Subscribe(ctx, roomID)
		defer unsubscribe()

		go s.roomReadPump(ctx, cancel, c, sess, ctrl, logger)

		// Write pump: stream snapshots, ping periodically.
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
					logger.Warnf("room %s: ping to user %s failed: %v", roomID, ident.UserID, err)
					return
				}
			case room, ok := <-snapshots:
				if !ok {
					writeRoomEvent(ctx, c, roomEvent{Type: "room_closed"})
					c.Close(websocket.StatusNormalClosure, "room deleted")
					return
				}
				switch sess.Observe(ctx, room) {
				case game.SignalRemoved:
					writeRoomEvent(ctx, c, roomEvent{Type: "removed"})
					c.Close(websocket.StatusNormalClosure, "removed by host")
					return
				case game.SignalRoomGone:
					writeRoomEvent(ctx, c, roomEvent{Type: "room_closed"})
					c.Close(websocket.StatusNormalClosure, "room deleted")
					return
				}
				if err := writeRoomEvent(ctx, c, roomEvent{Type: "room", Room: room}); err != nil {
					logger.Warnf("room %s: write to user %s failed: %v", roomID, ident.UserID, err)
					return
				}
			}
		}
	}
}

// roomReadPump consumes client actions until the socket or context dies.
func (s *Server) roomReadPump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, sess *game.Session, ctrl *lobby.Controller, logger *logrus.Logger) {
	defer cancel()
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("room %s: read error for user %s: %v", sess.RoomID, sess.UserID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var action roomAction
		if err := json.Unmarshal(msg, &action); err != nil {
			logger.Warnf("room %s: invalid json from user %s: %v", sess.RoomID, sess.UserID, err)
			continue
		}

		switch action.Type {
		case "ready":
			err = sess.MarkReady(ctx)
		case "flip":
			if action.Tile == nil {
				continue
			}
			err = sess.FlipTile(ctx, *action.Tile)
		case "approve":
			err = ctrl.ApproveJoin(ctx, sess.RoomID, action.UserID)
		case "reject":
			err = ctrl.RejectJoin(ctx, sess.RoomID, action.UserID)
		case "remove_player":
			err = sess.RemovePeer(ctx, action.UserID)
		case "leave":
			err = sess.Leave(ctx)
			if err == nil {
				c.Close(websocket.StatusNormalClosure, "left room")
				return
			}
		default:
			logger.Warnf("room %s: unknown action %q from user %s", sess.RoomID, action.Type, sess.UserID)
			continue
		}
		if err != nil {
			logger.Warnf("room %s: action %q from user %s failed: %v", sess.RoomID, action.Type, sess.UserID, err)
		}
	}
}

func writeRoomEvent(ctx context.Context, c *websocket.Conn, ev roomEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
