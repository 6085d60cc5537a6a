package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/rmacedo/guild-console/pkg/authgate"
	"github.com/rmacedo/guild-console/pkg/config"
	"github.com/rmacedo/guild-console/pkg/extract"
	"github.com/rmacedo/guild-console/pkg/messaging"
	"github.com/rmacedo/guild-console/pkg/models"
	"github.com/rmacedo/guild-console/pkg/store"
)

const (
	sessionName = "guild_console"

	sessionKeyRole   = "role"
	sessionKeyUserID = "user_id"
)

type WebRouter struct {
	config       config.Configuration
	storage      store.Stores
	sessionStore *sessions.CookieStore
	gate         *authgate.Gate
	issuer       *authgate.TokenIssuer
	Extractor    *extract.Service
	Messenger    *messaging.Service
}

func (wr *WebRouter) Initialize(cfg config.Configuration, stores store.Stores,
	gate *authgate.Gate, issuer *authgate.TokenIssuer) {
	wr.config = cfg
	wr.storage = stores
	wr.gate = gate
	wr.issuer = issuer
	wr.sessionStore = sessions.NewCookieStore([]byte(cfg.SessionSecret))
	wr.sessionStore.Options.HttpOnly = true
}

func (wr *WebRouter) getSession(r *http.Request) (*sessions.Session, error) {
	return wr.sessionStore.Get(r, sessionName)
}

// Handler builds the full router with middleware.
func (wr *WebRouter) Handler() http.Handler {
	myRouter := mux.NewRouter().StrictSlash(true)

	myRouter.HandleFunc("/api/auth/login", wr.login).Methods("POST")
	myRouter.HandleFunc("/api/auth/logout", wr.logout).Methods("POST")

	myRouter.HandleFunc("/api/extract-discord-users",
		wr.requireRole(models.RoleAdmin, wr.extractUsers)).Methods("POST")
	myRouter.HandleFunc("/api/send-discord-messages",
		wr.requireRole(models.RoleAdmin, wr.sendMessages)).Methods("POST")

	myRouter.HandleFunc("/api/tokens", wr.requireRole(models.RoleAdmin, wr.getTokens)).Methods("GET")
	myRouter.HandleFunc("/api/tokens", wr.requireRole(models.RoleAdmin, wr.addToken)).Methods("POST")
	myRouter.HandleFunc("/api/tokens/{id}", wr.requireRole(models.RoleAdmin, wr.deleteToken)).Methods("DELETE")

	myRouter.HandleFunc("/api/lists", wr.requireRole(models.RoleRegular, wr.getLists)).Methods("GET")
	myRouter.HandleFunc("/api/lists/{id}", wr.requireRole(models.RoleRegular, wr.getList)).Methods("GET")
	myRouter.HandleFunc("/api/lists/{id}/members", wr.requireRole(models.RoleRegular, wr.getListMembers)).Methods("GET")
	myRouter.HandleFunc("/api/lists/{id}", wr.requireRole(models.RoleRegular, wr.renameList)).Methods("PUT")
	myRouter.HandleFunc("/api/lists/{id}", wr.requireRole(models.RoleRegular, wr.deleteList)).Methods("DELETE")

	myRouter.HandleFunc("/api/groups", wr.requireRole(models.RoleRegular, wr.getGroups)).Methods("GET")
	myRouter.HandleFunc("/api/groups", wr.requireRole(models.RoleRegular, wr.createGroup)).Methods("POST")
	myRouter.HandleFunc("/api/groups/{id}", wr.requireRole(models.RoleRegular, wr.deleteGroup)).Methods("DELETE")
	myRouter.HandleFunc("/api/groups/{id}/members", wr.requireRole(models.RoleRegular, wr.getGroupMembers)).Methods("GET")
	myRouter.HandleFunc("/api/groups/{id}/invite", wr.requireRole(models.RoleRegular, wr.inviteToGroup)).Methods("POST")
	myRouter.HandleFunc("/api/group-members/{id}", wr.requireRole(models.RoleRegular, wr.updateGroupMember)).Methods("PUT")
	myRouter.HandleFunc("/api/group-members/{id}", wr.requireRole(models.RoleRegular, wr.removeGroupMember)).Methods("DELETE")

	myRouter.HandleFunc("/api/temporary-passwords", wr.requireRole(models.RoleSuperuser, wr.getTemporaryPasswords)).Methods("GET")
	myRouter.HandleFunc("/api/temporary-passwords", wr.requireRole(models.RoleSuperuser, wr.createTemporaryPassword)).Methods("POST")
	myRouter.HandleFunc("/api/temporary-passwords/{id}", wr.requireRole(models.RoleSuperuser, wr.deleteTemporaryPassword)).Methods("DELETE")

	myRouter.HandleFunc("/api/users", wr.requireRole(models.RoleSuperuser, wr.getAppUsers)).Methods("GET")
	myRouter.HandleFunc("/api/users", wr.requireRole(models.RoleSuperuser, wr.addAppUser)).Methods("POST")

	myRouter.Use(handlers.ProxyHeaders)
	myRouter.Use(RequestLogger)
	h := handlers.RecoveryHandler()

	return h(myRouter)
}

func RequestLogger(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		slog.Info("endpoint hit", "method", r.Method, "path", r.URL.Path, "remote_host", r.RemoteAddr, "user_agent", r.UserAgent())
		h.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// sessionFromRequest resolves the caller's session from a bearer token or,
// failing that, the session cookie. Nil means unauthenticated.
func (wr *WebRouter) sessionFromRequest(r *http.Request) *authgate.Session {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		s, err := wr.issuer.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			slog.Debug("bearer token rejected", "error", err)
			return nil
		}
		return s
	}

	sess, err := wr.getSession(r)
	if err != nil {
		return nil
	}
	role, _ := sess.Values[sessionKeyRole].(string)
	userID, _ := sess.Values[sessionKeyUserID].(string)
	resolved := models.Role(role)
	if !resolved.Valid() || resolved == models.RoleNone {
		return nil
	}
	return &authgate.Session{Role: resolved, UserID: userID}
}

func (wr *WebRouter) requireRole(minimum models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := wr.sessionFromRequest(r)
		if session == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !session.Role.AtLeast(minimum) {
			writeError(w, http.StatusForbidden, "Permission denied")
			return
		}
		next(w, r.WithContext(authgate.WithSession(r.Context(), *session)))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("error encoding response", "error", err)
	}
}

// writeError emits the uniform failure shape every handler uses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
	Token   string `json:"token"`
}

func (wr *WebRouter) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	identity, err := wr.gate.Check(req.Password)
	if err != nil {
		slog.Error("error checking password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if identity.Role == models.RoleNone {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	session := authgate.Session{Role: identity.Role}
	if identity.UserID != nil {
		session.UserID = *identity.UserID
	}

	token, err := wr.issuer.Issue(session)
	if err != nil {
		slog.Error("error issuing session token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	cookie, _ := wr.getSession(r)
	cookie.Values[sessionKeyRole] = string(session.Role)
	cookie.Values[sessionKeyUserID] = session.UserID
	if err := cookie.Save(r, w); err != nil {
		slog.Error("error saving session cookie", "error", err)
	}

	slog.Info("login accepted", "role", session.Role)
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Role:    string(session.Role),
		Token:   token,
	})
}

func (wr *WebRouter) logout(w http.ResponseWriter, r *http.Request) {
	cookie, _ := wr.getSession(r)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		slog.Error("error clearing session cookie", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
