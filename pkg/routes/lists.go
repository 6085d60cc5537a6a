package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

func (wr *WebRouter) getLists(w http.ResponseWriter, r *http.Request) {
	lists, err := wr.storage.Lists.GetAll()
	if err != nil {
		slog.Error("error fetching user lists", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"lists":   lists,
	})
}

func (wr *WebRouter) getList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	list, err := wr.storage.Lists.GetByID(id)
	if err != nil {
		slog.Error("error fetching user list", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "List not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"list":    list,
	})
}

func (wr *WebRouter) getListMembers(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	list, err := wr.storage.Lists.GetByID(id)
	if err != nil {
		slog.Error("error fetching user list", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "List not found")
		return
	}

	members, err := wr.storage.Members.GetByListID(id)
	if err != nil {
		slog.Error("error fetching list members", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"members": members,
	})
}

type renameListRequest struct {
	Name string `json:"name"`
}

func (wr *WebRouter) renameList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req renameListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := wr.storage.Lists.GetByID(id)
	if err != nil {
		slog.Error("error fetching user list", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "List not found")
		return
	}

	if err := wr.storage.Lists.Rename(id, req.Name); err != nil {
		slog.Error("error renaming user list", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// deleteList removes the list; member rows follow via the cascade constraint.
func (wr *WebRouter) deleteList(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	list, err := wr.storage.Lists.GetByID(id)
	if err != nil {
		slog.Error("error fetching user list", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "List not found")
		return
	}

	if err := wr.storage.Lists.Delete(id); err != nil {
		slog.Error("error deleting user list", "error", err, "list_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
