package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/internal/ctxtr"
	"github.com/notegrove/notegrove/internal/entity"
)

type groupTitleRequest struct {
	Title string `json:"title"`
}

type generateInviteRequest struct {
	Role *entity.Role `json:"role"`
}

// inviteResponse carries the group id alongside the code so the
// client can assemble the join request from it alone.
type inviteResponse struct {
	Code       string      `json:"code"`
	GroupID    uuid.UUID   `json:"groupId"`
	Role       entity.Role `json:"role"`
	ExpireDate time.Time   `json:"expireDate"`
}

type joinGroupRequest struct {
	GroupID uuid.UUID `json:"groupId"`
	Code    string    `json:"code"`
}

func (h *Handler) listGroups(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	views, err := h.groups.ListGroups(req.Context(), userID)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) createGroup(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body groupTitleRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}
	if body.Title == "" {
		respondError(w, req, entity.NewValidationError("title", "must not be empty"))
		return
	}

	group, err := h.groups.CreateGroup(req.Context(), userID, body.Title)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, group.IndexView(entity.RoleAdmin))
}

func (h *Handler) updateGroup(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	groupID, err := pathID(req, "group")
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body groupTitleRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}
	if body.Title == "" {
		respondError(w, req, entity.NewValidationError("title", "must not be empty"))
		return
	}

	group, err := h.groups.UpdateGroup(req.Context(), userID, groupID, body.Title)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, group.IndexView(entity.RoleAdmin))
}

func (h *Handler) deleteGroup(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	groupID, err := pathID(req, "group")
	if err != nil {
		respondError(w, req, err)
		return
	}

	if err := h.groups.DeleteGroup(req.Context(), userID, groupID); err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) generateInvite(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	groupID, err := pathID(req, "group")
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body generateInviteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}

	invite, err := h.groups.GenerateInviteCode(req.Context(), userID, groupID, body.Role)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, inviteResponse{
		Code:       invite.Code,
		GroupID:    invite.GroupID,
		Role:       invite.Role,
		ExpireDate: invite.ExpireDate,
	})
}

func (h *Handler) joinGroup(w http.ResponseWriter, req *http.Request) {
	userID, err := ctxtr.UserID(req.Context())
	if err != nil {
		respondError(w, req, err)
		return
	}

	var body joinGroupRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, req, entity.NewValidationError("body", "malformed json"))
		return
	}
	if body.Code == "" {
		respondError(w, req, entity.NewValidationError("code", "must not be empty"))
		return
	}

	view, err := h.groups.JoinGroup(req.Context(), userID, body.GroupID, body.Code)
	if err != nil {
		respondError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}
