package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rmacedo/guild-console/pkg/authgate"
)

// groupSession requires the caller's session to carry a linked console
// account; group ownership and membership hang off that identity.
func groupSession(w http.ResponseWriter, r *http.Request) (authgate.Session, bool) {
	session, ok := authgate.FromContext(r.Context())
	if !ok || session.UserID == "" {
		writeError(w, http.StatusForbidden, "No console account is linked to this session")
		return authgate.Session{}, false
	}
	return session, true
}

func (wr *WebRouter) getGroups(w http.ResponseWriter, r *http.Request) {
	session, ok := groupSession(w, r)
	if !ok {
		return
	}

	groups, err := wr.storage.Groups.GetAllForUser(session.UserID)
	if err != nil {
		slog.Error("error fetching groups", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"groups":  groups,
	})
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (wr *WebRouter) createGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := groupSession(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	group, err := wr.storage.Groups.Create(req.Name, req.Description, session.UserID)
	if err != nil {
		slog.Error("error creating group", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// The leader joins their own group on creation. Group creation already
	// succeeded, so a failure here is logged and not surfaced.
	if _, err := wr.storage.GroupMembers.Add(group.ID, session.UserID); err != nil {
		slog.Error("error adding leader as group member", "error", err, "group_id", group.ID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"group":   group,
	})
}

// deleteGroup is leader-only; memberships follow via the cascade constraint.
func (wr *WebRouter) deleteGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := groupSession(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	group, err := wr.storage.Groups.GetByID(id)
	if err != nil {
		slog.Error("error fetching group", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	if group.LeaderID != session.UserID {
		writeError(w, http.StatusForbidden, "Only the group leader can delete the group")
		return
	}

	if err := wr.storage.Groups.Delete(id); err != nil {
		slog.Error("error deleting group", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (wr *WebRouter) getGroupMembers(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	group, err := wr.storage.Groups.GetByID(id)
	if err != nil {
		slog.Error("error fetching group", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if group == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}

	members, err := wr.storage.GroupMembers.GetByGroup(id)
	if err != nil {
		slog.Error("error fetching group members", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type memberResponse struct {
		ID          string  `json:"id"`
		GroupID     string  `json:"group_id"`
		UserID      string  `json:"user_id"`
		DisplayName *string `json:"display_name"`
		UserEmail   *string `json:"user_email"`
		JoinedAt    string  `json:"joined_at"`
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		mr := memberResponse{
			ID:          m.ID,
			GroupID:     m.GroupID,
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt.Format("2006-01-02 15:04:05"),
		}
		if user, err := wr.storage.Users.GetByID(m.UserID); err == nil && user != nil {
			mr.UserEmail = &user.Email
		}
		out = append(out, mr)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"members": out,
	})
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (wr *WebRouter) inviteToGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := groupSession(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	isLeader, err := wr.storage.Groups.IsLeader(id, session.UserID)
	if err != nil {
		slog.Error("error checking group leadership", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !isLeader {
		writeError(w, http.StatusForbidden, "Only the group leader can invite members")
		return
	}

	user, err := wr.storage.Users.GetByEmail(req.Email)
	if err != nil {
		slog.Error("error resolving user by email", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "No user found with this email address")
		return
	}

	exists, err := wr.storage.GroupMembers.Exists(id, user.ID)
	if err != nil {
		slog.Error("error checking existing membership", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "User is already a member of this group")
		return
	}

	if _, err := wr.storage.GroupMembers.Add(id, user.ID); err != nil {
		slog.Error("error adding group member", "error", err, "group_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User successfully invited to the group",
	})
}

type updateGroupMemberRequest struct {
	DisplayName string `json:"display_name"`
}

func (wr *WebRouter) updateGroupMember(w http.ResponseWriter, r *http.Request) {
	session, ok := groupSession(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var req updateGroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	member, err := wr.storage.GroupMembers.GetByID(id)
	if err != nil {
		slog.Error("error fetching group member", "error", err, "member_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "Group member not found")
		return
	}

	if !wr.canManageMember(session, member.GroupID, member.UserID) {
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}

	if err := wr.storage.GroupMembers.SetDisplayName(id, req.DisplayName); err != nil {
		slog.Error("error updating group member", "error", err, "member_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (wr *WebRouter) removeGroupMember(w http.ResponseWriter, r *http.Request) {
	session, ok := groupSession(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	member, err := wr.storage.GroupMembers.GetByID(id)
	if err != nil {
		slog.Error("error fetching group member", "error", err, "member_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "Group member not found")
		return
	}

	if !wr.canManageMember(session, member.GroupID, member.UserID) {
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}

	if err := wr.storage.GroupMembers.Remove(id); err != nil {
		slog.Error("error removing group member", "error", err, "member_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// canManageMember allows the group leader, or the member acting on their own
// row.
func (wr *WebRouter) canManageMember(session authgate.Session, groupID, memberUserID string) bool {
	if session.UserID == memberUserID {
		return true
	}
	isLeader, err := wr.storage.Groups.IsLeader(groupID, session.UserID)
	if err != nil {
		slog.Error("error checking group leadership", "error", err, "group_id", groupID)
		return false
	}
	return isLeader
}
