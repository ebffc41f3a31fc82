package handler

import (
	"encoding/json"
	"net/http"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/cache"
	"github.com/matchpointhq/matchpoint-api/internal/club"
)

const coachesCacheKey = "coaches:directory"

// coachFields is the set of partial-update targets accepted from the
// request body. Values pass through to storage without per-field
// validation.
var coachFields = []string{"rate", "specialization", "level", "availability"}

// UpdateCoach applies a partial update to a coaching profile. Only fields
// present in the body are written.
// @Summary Update a coach profile
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "coachId plus any of rate, specialization, level, availability"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /admin/coaches/update [post]
func (h *Handler) UpdateCoach(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Request body must be a JSON object")
		return
	}

	var coachID string
	if raw, ok := body["coachId"]; ok {
		if err := json.Unmarshal(raw, &coachID); err != nil {
			coachID = ""
		}
	}
	if coachID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "coachId is required")
		return
	}

	fields := make(map[string]any)
	for _, name := range coachFields {
		raw, ok := body[name]
		if !ok {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Invalid value for "+name)
			return
		}
		fields[name] = v
	}
	if len(fields) == 0 {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "No fields to update")
		return
	}

	coach, err := h.store.UpdateCoach(r.Context(), coachID, fields)
	if err != nil {
		h.logger.Error("coach update failed", "coach_id", coachID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to update coach")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(coachesCacheKey)
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"data": coach})
}

// ListCoaches serves the coaching directory.
// @Summary Coach directory
// @Tags coaches
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /coaches [get]
func (h *Handler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	if data, etag, ok := h.cache.Get(coachesCacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLDirectory, true)
		return
	}

	coaches, err := h.store.Coaches(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load coaches")
		return
	}
	if coaches == nil {
		coaches = []club.Coach{}
	}

	data, err := json.Marshal(map[string]interface{}{"data": coaches})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to encode coaches")
		return
	}
	etag := h.cache.Set(coachesCacheKey, data, cache.TTLDirectory)
	respond.WriteJSON(w, data, etag, cache.TTLDirectory, false)
}
