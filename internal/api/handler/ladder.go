package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/cache"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
)

const standingsCacheKey = "ladder:standings"

// RegisterTeam pairs the caller with a partner on the ladder. Both must
// be approved members and neither may already belong to a team. The new
// team takes rank max+1; the read-then-insert is not serialized, so
// racing registrations can produce duplicate ranks (repaired out of band).
// @Summary Register a ladder team
// @Tags ladder
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "partner_id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /ladder/register [post]
func (h *Handler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PartnerID string `json:"partner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PartnerID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "partner_id is required")
		return
	}

	callerID := UserID(r.Context())
	if req.PartnerID == callerID {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "You cannot partner with yourself")
		return
	}

	ids := []string{callerID, req.PartnerID}
	apps, err := h.store.ApplicationsByIDs(r.Context(), ids)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load players")
		return
	}
	byID := make(map[string]club.Application, len(apps))
	for _, a := range apps {
		byID[a.ID] = a
	}
	caller, callerOK := byID[callerID]
	partner, partnerOK := byID[req.PartnerID]
	if !callerOK || !partnerOK ||
		caller.Status != config.StatusApproved || partner.Status != config.StatusApproved {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Both players must be approved members")
		return
	}

	existing, err := h.store.LadderMembership(r.Context(), ids)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to check existing teams")
		return
	}
	if len(existing) > 0 {
		respond.WriteError(w, http.StatusConflict, respond.CodeConflict, "One of the players already has a ladder team")
		return
	}

	maxRank, err := h.store.MaxLadderRank(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to assign rank")
		return
	}

	team := club.LadderTeam{
		ID:        uuid.NewString(),
		Rank:      maxRank + 1,
		Player1ID: callerID,
		Player2ID: req.PartnerID,
		TeamName:  club.TeamName(caller.FullName, partner.FullName),
	}
	if err := h.store.InsertLadderTeam(r.Context(), team); err != nil {
		h.logger.Error("ladder registration failed", "player1", callerID, "player2", req.PartnerID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to register team")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(standingsCacheKey)
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"team":    team,
	})
}

// LadderStandings serves the ranked team list.
// @Summary Ladder standings
// @Tags ladder
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ladder [get]
func (h *Handler) LadderStandings(w http.ResponseWriter, r *http.Request) {
	if data, etag, ok := h.cache.Get(standingsCacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLStandings, true)
		return
	}

	teams, err := h.store.LadderStandings(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load standings")
		return
	}
	if teams == nil {
		teams = []club.LadderTeam{}
	}

	data, err := json.Marshal(map[string]interface{}{"data": teams})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to encode standings")
		return
	}
	etag := h.cache.Set(standingsCacheKey, data, cache.TTLStandings)
	respond.WriteJSON(w, data, etag, cache.TTLStandings, false)
}
