package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/leaderboard"
)

// LeaderboardHandler serves ranked views
type LeaderboardHandler struct {
	leaderboard *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(lb *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: lb,
	}
}

// Get handles GET /leaderboard?mode=sprint|blitz&limit=N.
// limit defaults to leaderboard.DefaultLimit; a limit above the service's
// MaxLimit is rejected rather than silently truncated.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := model.ParseMode(q.Get("mode"))
	if err != nil {
		WriteError(w, err)
		return
	}

	limit := leaderboard.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		if maxLimit := h.leaderboard.MaxLimit(); limit > maxLimit {
			WriteError(w, NewInvalidRequestError(fmt.Sprintf("limit must be at most %d", maxLimit)))
			return
		}
	}

	entries, err := h.leaderboard.Rank(mode, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, entries)
}
