package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
	"github.com/matchpointhq/matchpoint-api/internal/identity"
)

// Me returns the caller's own membership profile.
// @Summary Current member profile
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	app, err := h.store.ApplicationByID(r.Context(), UserID(r.Context()))
	if errors.Is(err, club.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, respond.CodeNotFound, "Profile not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to load profile")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"data": app})
}

// ApproveApplication confirms the applicant's email with the identity
// provider, then promotes the application to member.
// @Summary Approve a membership application
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "application id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /admin/applications/approve [post]
func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "Application id is required")
		return
	}

	// Confirm the identity's email first; a provider failure aborts the
	// approval with the provider's own message.
	if err := h.ident.ConfirmEmail(r.Context(), req.ID); err != nil {
		h.logger.Error("approve: email confirmation failed", "application_id", req.ID, "error", err)
		msg := "Failed to confirm email"
		var perr *identity.Error
		if errors.As(err, &perr) {
			msg = perr.Message
		}
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, msg)
		return
	}

	app, err := h.store.SetApplicationStatus(r.Context(), req.ID, config.StatusMember)
	if err != nil {
		h.logger.Error("approve: status update failed", "application_id", req.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to update application")
		return
	}

	// Welcome email is best-effort; never changes the response.
	if h.mailer != nil {
		if err := h.mailer.SendWelcome(r.Context(), app.Email, app.FullName); err != nil {
			h.logger.Warn("approve: welcome email failed", "application_id", req.ID, "error", err)
		}
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"data": app})
}

// DeleteUser removes a member's application row, then their identity.
// The two deletes are not atomic: a provider failure after the row delete
// leaves an orphaned identity, surfaced as 500 with no compensation.
// @Summary Delete a member
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "user id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /admin/users/delete [post]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "User id is required")
		return
	}
	if req.ID == UserID(r.Context()) {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "You cannot delete your own account")
		return
	}

	if err := h.store.DeleteApplication(r.Context(), req.ID); err != nil {
		h.logger.Error("delete user: application delete failed", "user_id", req.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to delete application")
		return
	}

	if err := h.ident.DeleteUser(r.Context(), req.ID); err != nil {
		h.logger.Error("delete user: identity delete failed", "user_id", req.ID, "error", err)
		msg := "Failed to delete identity"
		var perr *identity.Error
		if errors.As(err, &perr) {
			msg = perr.Message
		}
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, msg)
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// CompleteOnboarding stores the caller's skill level (rounded to one
// decimal), resets reliability to the baseline, and marks onboarding
// complete. Re-running always resets reliability.
// @Summary Complete onboarding
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "skill_level"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /onboarding [post]
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SkillLevel *float64 `json:"skill_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SkillLevel == nil {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "skill_level is required and must be a number")
		return
	}
	skill := *req.SkillLevel
	if skill < config.SkillFloor || skill > config.SkillCeiling {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "skill_level must be between 1.0 and 7.0")
		return
	}

	app, err := h.store.Onboard(r.Context(), UserID(r.Context()), club.RoundSkill(skill), config.ReliabilityBaseline)
	if err != nil {
		h.logger.Error("onboarding failed", "user_id", UserID(r.Context()), "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to complete onboarding")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"data": app})
}

// UploadAvatar validates and stores the caller's avatar, then writes the
// public URL onto the profile. The storage write is not rolled back when
// the profile update fails.
// @Summary Upload avatar
// @Tags members
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "avatar image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /profile/avatar [post]
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "A file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := h.objects.ValidateUpload(contentType, header.Size); err != nil {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, err.Error())
		return
	}

	userID := UserID(r.Context())
	if err := h.objects.UploadAvatar(r.Context(), userID, contentType, header.Size, file); err != nil {
		h.logger.Error("avatar upload failed", "user_id", userID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to upload avatar")
		return
	}

	url := h.objects.PublicURL(userID, contentType)
	if err := h.store.SetAvatarURL(r.Context(), userID, url); err != nil {
		h.logger.Error("avatar profile update failed", "user_id", userID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Uploaded but failed to update profile")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"url": url})
}
