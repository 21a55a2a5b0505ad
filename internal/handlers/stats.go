package handlers

import (
	"net/http"

	"crazypuzzle/internal/models"
)

// MyStatsHandler returns the caller's multiplayer stats.
func (s *Server) MyStatsHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := s.EnsureGuestUser(w, r)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	us, err := s.Stats.Get(r.Context(), ident.UserID)
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

// TopStatsHandler returns the multiplayer points leaderboard.
func (s *Server) TopStatsHandler(w http.ResponseWriter, r *http.Request) {
	top, err := s.Stats.TopPoints(r.Context(), 10)
	if err != nil {
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	if top == nil {
		top = []models.UserStats{}
	}
	writeJSON(w, http.StatusOK, top)
}
