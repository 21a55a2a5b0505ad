package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"crazypuzzle/internal/auth"
	"crazypuzzle/internal/lobby"
	"crazypuzzle/internal/models"
	"crazypuzzle/internal/store"
)

// controllerFor builds a per-request lobby controller bound to the caller.
func (s *Server) controllerFor(ident auth.Identity) *lobby.Controller {
	return lobby.NewController(s.Rooms, ident.UserID, models.FirstName(ident.DisplayName))
}

// CreateRoomHandler allocates a waiting room with the caller as host.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := s.EnsureGuestUser(w, r)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	var req struct {
		Difficulty models.Difficulty `json:"difficulty"`
		Layout     models.Layout     `json:"layout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if !req.Difficulty.Valid() || !req.Layout.Valid() {
		http.Error(w, "unknown difficulty or layout", http.StatusBadRequest)
		return
	}

	roomID, err := s.controllerFor(ident).CreateRoom(r.Context(), req.Difficulty, req.Layout.OrGrid())
	if err != nil {
		http.Error(w, "failed to create room", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"roomId": roomID})
}

// ListRoomsHandler returns the current waiting-room list as a one-shot read.
// Live updates go over the lobby WebSocket instead.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.Rooms.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list rooms", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lobby.WaitingRooms(rooms))
}

// JoinRoomHandler files a join request for host approval.
func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := s.EnsureGuestUser(w, r)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	err = s.controllerFor(ident).RequestJoin(r.Context(), req.RoomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to request join", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// DeleteRoomHandler removes a room. The store does not enforce ownership;
// like every other room write this is host-only by client convention.
func (s *Server) DeleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := s.EnsureGuestUser(w, r)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	err = s.controllerFor(ident).DeleteRoom(r.Context(), req.RoomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to delete room", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
