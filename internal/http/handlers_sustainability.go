package http

import (
	"net/http"

	"payperless/internal/core"
)

type sustainabilityResponse struct {
	Metrics     core.SustainabilityMetrics `json:"metrics"`
	Leaderboard []core.LeaderboardEntry    `json:"leaderboard"`
}

func (s *Server) handleSustainability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, sustainabilityResponse{
		Metrics:     core.DefaultMetrics(),
		Leaderboard: core.Leaderboard(core.DefaultLeaderboard()),
	})
}
