package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/cache"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
)

const openMatchesCacheKey = "matches:open"

// JoinMatch applies a player to an open match. Public route: the caller
// is not authenticated, but the match and player must both exist and the
// player's skill must fit the bracket when both bounds are set.
// @Summary Join an open match
// @Tags matches
// @Accept json
// @Produce json
// @Param body body object true "match_id and player_id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /matches/join [post]
func (h *Handler) JoinMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MatchID  string `json:"match_id"`
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchID == "" || req.PlayerID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "match_id and player_id are required")
		return
	}

	match, err := h.store.MatchByID(r.Context(), req.MatchID)
	if errors.Is(err, club.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, respond.CodeNotFound, "Match not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load match")
		return
	}
	if match.Status != config.MatchStatusOpen {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Match is not open")
		return
	}

	player, err := h.store.ApplicationByID(r.Context(), req.PlayerID)
	if errors.Is(err, club.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, respond.CodeNotFound, "Player not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load player")
		return
	}

	// The bracket is only enforced when both bounds are set.
	if match.SkillMin != nil && match.SkillMax != nil &&
		!club.SkillInBracket(player.SkillLevel, match.SkillMin, match.SkillMax) {
		respond.WriteError(w, http.StatusForbidden, respond.CodeForbidden,
			fmt.Sprintf("Your skill level %.1f is outside this match's bracket %.1f–%.1f",
				player.SkillLevel, *match.SkillMin, *match.SkillMax))
		return
	}

	// Idempotency guard: one join record per (match, player) pair.
	if existing, err := h.store.MatchPlayerByPair(r.Context(), req.MatchID, req.PlayerID); err == nil {
		respond.WriteErrorDetail(w, http.StatusConflict, respond.CodeConflict,
			"You have already requested to join this match", existing.Status)
		return
	} else if !errors.Is(err, club.ErrNotFound) {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to check existing request")
		return
	}

	mp := club.MatchPlayer{
		ID:       uuid.NewString(),
		MatchID:  req.MatchID,
		PlayerID: req.PlayerID,
		Status:   config.StatusPending,
	}
	if err := h.store.InsertMatchPlayer(r.Context(), mp); err != nil {
		h.logger.Error("join match: insert failed", "match_id", req.MatchID, "player_id", req.PlayerID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to join match")
		return
	}

	// Re-fetch to confirm the insert landed; a silent no-op is a 500.
	if _, err := h.store.MatchPlayerByPair(r.Context(), req.MatchID, req.PlayerID); err != nil {
		h.logger.Error("join match: row missing after insert", "match_id", req.MatchID, "player_id", req.PlayerID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Join request was not recorded")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// --------------------------------------------------------------------------
// Delete match — two-attempt fallback strategy
// --------------------------------------------------------------------------

// fallbackDelete runs a delete under the privileged service credential
// first, then retries under the caller's own credential when the primary
// attempt fails. Both outcomes are logged.
type fallbackDelete struct {
	name      string
	primary   func(ctx context.Context) error
	secondary func(ctx context.Context) error
	logger    *slog.Logger
}

func (f fallbackDelete) run(ctx context.Context) error {
	primaryErr := f.primary(ctx)
	if primaryErr == nil {
		return nil
	}
	f.logger.Warn("privileged delete failed, retrying with caller credentials",
		"step", f.name, "error", primaryErr)

	if err := f.secondary(ctx); err != nil {
		f.logger.Error("fallback delete failed", "step", f.name, "error", err)
		return fmt.Errorf("%s: primary: %w", f.name, primaryErr)
	}
	f.logger.Info("fallback delete succeeded", "step", f.name)
	return nil
}

// DeleteMatch removes a match and its join records. Dependent
// match_players rows go first (foreign-key ordering). Each step falls back
// to the caller's own credentials through the data API when the
// privileged path fails; only a final failure on the match row itself is
// surfaced.
// @Summary Delete a match
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "match id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /admin/matches/delete [post]
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Match id is required")
		return
	}

	bearer := BearerToken(r.Context())

	players := fallbackDelete{
		name: "match_players",
		primary: func(ctx context.Context) error {
			return h.store.DeleteMatchPlayers(ctx, req.ID)
		},
		secondary: func(ctx context.Context) error {
			return h.rowAPI.Delete(ctx, config.MatchPlayersTable, "match_id", req.ID, bearer)
		},
		logger: h.logger,
	}
	// A players-step failure is logged but does not abort; the match
	// delete below decides the response.
	_ = players.run(r.Context())

	match := fallbackDelete{
		name: "match",
		primary: func(ctx context.Context) error {
			return h.store.DeleteMatch(ctx, req.ID)
		},
		secondary: func(ctx context.Context) error {
			return h.rowAPI.Delete(ctx, config.MatchesTable, "id", req.ID, bearer)
		},
		logger: h.logger,
	}
	if err := match.run(r.Context()); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to delete match")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(openMatchesCacheKey)
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ListMatches serves the open-match directory for the client shell.
// @Summary List open matches
// @Tags matches
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /matches [get]
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	if data, etag, ok := h.cache.Get(openMatchesCacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLDirectory, true)
		return
	}

	matches, err := h.store.OpenMatches(r.Context(), config.MatchStatusOpen)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load matches")
		return
	}
	if matches == nil {
		matches = []club.Match{}
	}

	data, err := json.Marshal(map[string]interface{}{"data": matches})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to encode matches")
		return
	}
	etag := h.cache.Set(openMatchesCacheKey, data, cache.TTLDirectory)
	respond.WriteJSON(w, data, etag, cache.TTLDirectory, false)
}
