package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type addTokenRequest struct {
	Token       string `json:"token"`
	Description string `json:"description"`
}

func (wr *WebRouter) getTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := wr.storage.Tokens.GetAll()
	if err != nil {
		slog.Error("error fetching bot tokens", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tokens":  tokens,
	})
}

func (wr *WebRouter) addToken(w http.ResponseWriter, r *http.Request) {
	var req addTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	token, err := wr.storage.Tokens.Add(req.Token, req.Description, sessionUserID(r))
	if err != nil {
		slog.Error("error saving bot token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
	})
}

func (wr *WebRouter) deleteToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	token, err := wr.storage.Tokens.GetByID(id)
	if err != nil {
		slog.Error("error fetching bot token", "error", err, "token_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if token == nil {
		writeError(w, http.StatusNotFound, "Bot token not found")
		return
	}

	if err := wr.storage.Tokens.Delete(id); err != nil {
		slog.Error("error deleting bot token", "error", err, "token_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
