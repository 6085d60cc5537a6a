package routes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rmacedo/guild-console/pkg/authgate"
	"github.com/rmacedo/guild-console/pkg/discord"
	"github.com/rmacedo/guild-console/pkg/extract"
	"github.com/rmacedo/guild-console/pkg/messaging"
	"github.com/rmacedo/guild-console/pkg/models"
	"github.com/rmacedo/guild-console/pkg/store"
)

type extractRequest struct {
	ServerID        string           `json:"serverId"`
	TokenID         string           `json:"tokenId"`
	Filters         *extract.Filters `json:"filters"`
	ListName        string           `json:"listName"`
	ListDescription string           `json:"listDescription"`
}

type extractResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	ListID     string              `json:"listId"`
	ListName   string              `json:"listName"`
	Users      []models.Member     `json:"users"`
	ServerInfo extract.ServerInfo  `json:"serverInfo"`
}

func (wr *WebRouter) extractUsers(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.ServerID == "" || req.TokenID == "" {
		writeError(w, http.StatusBadRequest, "serverId and tokenId are required")
		return
	}

	result, err := wr.Extractor.Extract(r.Context(), extract.Request{
		ServerID:        req.ServerID,
		TokenID:         req.TokenID,
		Filters:         req.Filters,
		ListName:        req.ListName,
		ListDescription: req.ListDescription,
		CreatedBy:       sessionUserID(r),
	})
	if err != nil {
		wr.writeDiscordOpError(w, err, "Error extracting Discord users")
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Success:    true,
		Message:    result.Message,
		ListID:     result.ListID,
		ListName:   result.ListName,
		Users:      result.Users,
		ServerInfo: result.Server,
	})
}

type sendMessagesRequest struct {
	UserIDs []string `json:"userIds"`
	Message string   `json:"message"`
	TokenID string   `json:"tokenId"`
}

type sendMessagesResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Results []messaging.Result `json:"results"`
}

func (wr *WebRouter) sendMessages(w http.ResponseWriter, r *http.Request) {
	var req sendMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if len(req.UserIDs) == 0 || req.Message == "" || req.TokenID == "" {
		writeError(w, http.StatusBadRequest, "userIds, message and tokenId are required")
		return
	}

	results, err := wr.Messenger.Send(r.Context(), req.UserIDs, req.Message, req.TokenID)
	if err != nil {
		wr.writeDiscordOpError(w, err, "Error sending Discord messages")
		return
	}

	writeJSON(w, http.StatusOK, sendMessagesResponse{
		Success: true,
		Message: "Message sending process completed",
		Results: results,
	})
}

// writeDiscordOpError maps service errors onto the response: missing rows are
// 404, Discord failures carry the upstream status, everything else is a 500.
func (wr *WebRouter) writeDiscordOpError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bot token not found")
		return
	}
	var apiErr *discord.APIError
	if errors.As(err, &apiErr) {
		message := fallback
		if apiErr.Message != "" {
			message = fallback + ": " + apiErr.Message
		}
		writeError(w, apiErr.Status, message)
		return
	}
	slog.Error(fallback, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// sessionUserID returns the console account linked to the request's session,
// or nil when the session carries no identity (bootstrap and temporary
// logins).
func sessionUserID(r *http.Request) *string {
	session, ok := authgate.FromContext(r.Context())
	if !ok || session.UserID == "" {
		return nil
	}
	id := session.UserID
	return &id
}
