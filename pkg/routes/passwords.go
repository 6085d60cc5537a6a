package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type createTemporaryPasswordRequest struct {
	Password       string `json:"password"`
	Description    string `json:"description"`
	ExpiresInHours int    `json:"expiresInHours"`
}

func (wr *WebRouter) getTemporaryPasswords(w http.ResponseWriter, r *http.Request) {
	passwords, err := wr.storage.Passwords.GetAllTemporary()
	if err != nil {
		slog.Error("error fetching temporary passwords", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"passwords": passwords,
	})
}

func (wr *WebRouter) createTemporaryPassword(w http.ResponseWriter, r *http.Request) {
	var req createTemporaryPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	if req.ExpiresInHours <= 0 {
		req.ExpiresInHours = 24
	}

	row, err := wr.storage.Passwords.CreateTemporary(
		req.Password, req.Description,
		time.Duration(req.ExpiresInHours)*time.Hour,
		sessionUserID(r),
	)
	if err != nil {
		slog.Error("error creating temporary password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"password": row,
	})
}

func (wr *WebRouter) deleteTemporaryPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := wr.storage.Passwords.DeleteTemporary(id); err != nil {
		slog.Error("error deleting temporary password", "error", err, "password_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type addAppUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (wr *WebRouter) getAppUsers(w http.ResponseWriter, r *http.Request) {
	users, err := wr.storage.Users.GetAll()
	if err != nil {
		slog.Error("error fetching users", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}

func (wr *WebRouter) addAppUser(w http.ResponseWriter, r *http.Request) {
	var req addAppUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	existing, err := wr.storage.Users.GetByEmail(req.Email)
	if err != nil {
		slog.Error("error checking existing user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "A user with this email already exists")
		return
	}

	user, err := wr.storage.Users.Add(req.Email, req.Name)
	if err != nil {
		slog.Error("error creating user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}
