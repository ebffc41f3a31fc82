package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/club"
)

// DeleteBooking cancels a court booking. Only the owning user may cancel;
// the delete is verified by a re-fetch so a silent no-op surfaces as 500.
// @Summary Cancel a court booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "booking id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /bookings/delete [post]
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Booking id is required")
		return
	}

	booking, err := h.store.BookingByID(r.Context(), req.ID)
	if errors.Is(err, club.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, respond.CodeNotFound, "Booking not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load booking")
		return
	}
	if booking.UserID != UserID(r.Context()) {
		respond.WriteError(w, http.StatusForbidden, respond.CodeForbidden, "You can only cancel your own bookings")
		return
	}

	if err := h.store.DeleteBooking(r.Context(), req.ID); err != nil {
		h.logger.Error("booking delete failed", "booking_id", req.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to cancel booking")
		return
	}

	// Post-condition: the row must actually be gone.
	if _, err := h.store.BookingByID(r.Context(), req.ID); !errors.Is(err, club.ErrNotFound) {
		h.logger.Error("booking still exists after delete", "booking_id", req.ID)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Booking still exists after delete")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}
