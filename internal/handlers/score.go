package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"crazypuzzle/internal/database"
	"crazypuzzle/internal/models"
	"crazypuzzle/internal/score"
)

// SubmitScoreHandler records a finished single-player game. The score is
// computed server-side from moves and elapsed time so clients cannot submit
// arbitrary values.
func (s *Server) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := s.EnsureGuestUser(w, r)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	var req struct {
		Moves       int               `json:"moves"`
		TimeSeconds int               `json:"time"`
		Difficulty  models.Difficulty `json:"difficulty"`
		Layout      models.Layout     `json:"layout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Moves < 0 || req.TimeSeconds < 0 || !req.Difficulty.Valid() || !req.Layout.Valid() {
		http.Error(w, "invalid score payload", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(ident.UserID)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusForbidden)
		return
	}

	sc := models.Score{
		UserID:      userID,
		UserName:    models.FirstName(ident.DisplayName),
		Score:       score.ComputeScore(req.Moves, req.TimeSeconds),
		TimeSeconds: req.TimeSeconds,
		Difficulty:  req.Difficulty,
		Layout:      req.Layout.OrGrid(),
	}
	if err := database.InsertScore(r.Context(), &sc); err != nil {
		http.Error(w, "failed to save score", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// TopScoresHandler returns the single-player leaderboard for one board,
// selected by difficulty and layout query parameters.
func (s *Server) TopScoresHandler(w http.ResponseWriter, r *http.Request) {
	difficulty := models.Difficulty(r.URL.Query().Get("difficulty"))
	layout := models.Layout(r.URL.Query().Get("layout"))
	if !difficulty.Valid() || !layout.Valid() {
		http.Error(w, "unknown difficulty or layout", http.StatusBadRequest)
		return
	}

	scores, err := database.TopScores(r.Context(), difficulty, layout.OrGrid(), 10)
	if err != nil {
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	if scores == nil {
		scores = []models.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}
