package handlers

import (
	"errors"
	"net/http"

	"github.com/vglabs/grapple-league/services"
)

type RankingHandler struct {
	ratings *services.RatingService
}

func NewRankingHandler(rs *services.RatingService) *RankingHandler {
	return &RankingHandler{ratings: rs}
}

// RecalculateHandler handles POST /rankings/recalculate-elo
func (h *RankingHandler) RecalculateHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ratings.RecalculateAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"recalculation": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HeadToHeadHandler handles GET /rankings/head-to-head
func (h *RankingHandler) HeadToHeadHandler(w http.ResponseWriter, r *http.Request) {
	playerA, err := queryInt(r, "player_a", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerB, err := queryInt(r, "player_b", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if playerA < 1 || playerB < 1 {
		badRequestResponse(w, r, errors.New("player_a and player_b query parameters are required"))
		return
	}

	summary, err := h.ratings.HeadToHead(r.Context(), playerA, playerB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"head_to_head": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
