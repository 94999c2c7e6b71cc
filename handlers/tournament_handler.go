package handlers

import (
	"errors"
	"net/http"

	"github.com/vglabs/grapple-league/models"
	"github.com/vglabs/grapple-league/services"
)

type TournamentHandler struct {
	tournaments *services.TournamentService
	ratings     *services.RatingService
}

func NewTournamentHandler(ts *services.TournamentService, rs *services.RatingService) *TournamentHandler {
	return &TournamentHandler{
		tournaments: ts,
		ratings:     rs,
	}
}

type createBracketRequest struct {
	EventID        int                     `json:"event_id"`
	WeightClassID  *int                    `json:"weight_class_id"`
	Format         models.TournamentFormat `json:"format_type"`
	Config         models.BracketConfig    `json:"config"`
	MinRestMinutes int                     `json:"min_rest_minutes"`
	AutoGenerate   *bool                   `json:"auto_generate"`
}

// CreateBracketHandler handles POST /tournaments/brackets
func (h *TournamentHandler) CreateBracketHandler(w http.ResponseWriter, r *http.Request) {
	var req createBracketRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.tournaments.CreateBracket(r.Context(), services.CreateBracketInput{
		EventID:        req.EventID,
		WeightClassID:  req.WeightClassID,
		Format:         req.Format,
		Config:         req.Config,
		MinRestMinutes: req.MinRestMinutes,
		AutoGenerate:   req.AutoGenerate,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracketHandler handles POST /tournaments/brackets/{bracketID}/generate
func (h *TournamentHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.tournaments.GenerateBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler handles GET /tournaments/brackets/{bracketID}
func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, rounds, err := h.tournaments.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket, "rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteBracketHandler handles DELETE /tournaments/brackets/{bracketID}
func (h *TournamentHandler) DeleteBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournaments.DeleteBracket(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "bracket deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpcomingMatchesHandler handles GET /tournaments/brackets/{bracketID}/upcoming
func (h *TournamentHandler) UpcomingMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil || limit < 1 {
		badRequestResponse(w, r, errors.New("invalid limit query parameter"))
		return
	}

	matches, err := h.tournaments.GetUpcomingMatches(r.Context(), id, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketRoundsHandler handles GET /tournaments/brackets/{bracketID}/rounds
func (h *TournamentHandler) BracketRoundsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	_, rounds, err := h.tournaments.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketMatchesHandler handles GET /tournaments/brackets/{bracketID}/matches
func (h *TournamentHandler) BracketMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.MatchStatus(raw)
		status = &s
	}

	matches, err := h.tournaments.ListBracketMatches(r.Context(), id, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PairingStatsHandler handles GET /tournaments/events/{eventID}/pairing-stats
func (h *TournamentHandler) PairingStatsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.tournaments.EventPairingStats(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pairing_stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEventBracketsHandler handles GET /tournaments/events/{eventID}/brackets
func (h *TournamentHandler) ListEventBracketsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	brackets, err := h.tournaments.ListEventBrackets(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": brackets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateResultRequest struct {
	Result          models.MatchResult `json:"result"`
	Method          *string            `json:"method"`
	DurationSeconds *int               `json:"duration_seconds"`
}

// UpdateMatchResultHandler handles PUT /tournaments/matches/{matchID}/result
func (h *TournamentHandler) UpdateMatchResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req updateResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournaments.UpdateMatchResult(r.Context(), id, req.Result, req.Method, req.DurationSeconds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UndoMatchResultHandler handles DELETE /tournaments/matches/{matchID}/result
func (h *TournamentHandler) UndoMatchResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournaments.UndoMatchResult(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteMatchHandler handles DELETE /tournaments/matches/{matchID}
func (h *TournamentHandler) DeleteMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournaments.DeleteMatch(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "match deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type createManualMatchRequest struct {
	APlayerID     int  `json:"a_player_id"`
	BPlayerID     int  `json:"b_player_id"`
	WeightClassID *int `json:"weight_class_id"`
	MatchNumber   *int `json:"match_number"`
}

// CreateManualMatchHandler handles POST /tournaments/events/{eventID}/matches
func (h *TournamentHandler) CreateManualMatchHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req createManualMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournaments.CreateManualMatch(r.Context(), services.CreateManualMatchInput{
		EventID:       eventID,
		APlayerID:     req.APlayerID,
		BPlayerID:     req.BPlayerID,
		WeightClassID: req.WeightClassID,
		MatchNumber:   req.MatchNumber,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearManualMatchesHandler handles DELETE /tournaments/events/{eventID}/matches/clear-all
func (h *TournamentHandler) ClearManualMatchesHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleted, err := h.tournaments.ClearManualMatches(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FormatRecommendationsHandler handles GET /tournaments/events/{eventID}/format-recommendations
func (h *TournamentHandler) FormatRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := getIDFromURL(r, "eventID"); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := queryInt(r, "participants", 0)
	if err != nil || participants < 2 {
		badRequestResponse(w, r, errors.New("participants query parameter must be at least 2"))
		return
	}
	req := services.RecommendRequest{Participants: participants}
	if req.MinMatches, err = queryInt(r, "min_matches", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.MaxMatches, err = queryInt(r, "max_matches", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.MatchDurationMin, err = queryInt(r, "match_duration", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if budget, err := queryInt(r, "time_budget", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	} else if budget > 0 {
		req.TimeBudgetMin = &budget
	}

	recommendations := services.RecommendFormats(req)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"recommendations": recommendations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EloPreviewHandler handles GET /tournaments/matches/{matchID}/elo-preview
func (h *TournamentHandler) EloPreviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.ratings.PreviewForMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TaleOfTheTapeHandler handles GET /tournaments/matches/{matchID}/tale-of-the-tape
func (h *TournamentHandler) TaleOfTheTapeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tape, err := h.ratings.BuildTaleOfTheTape(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tale_of_the_tape": tape}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
