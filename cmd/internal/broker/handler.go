package broker

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gate/cmd/internal/store"
	"gate/cmd/security/password"
	"gate/cmd/security/secret"
)

// Handler wires the broker flows onto HTTP.
type Handler struct {
	log *slog.Logger
	cfg Config
	svc *Service
}

// NewHandler constructs the broker HTTP boundary over the shared store.
func NewHandler(log *slog.Logger, cfg Config, st *store.Store, pw password.Config) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log: log,
		cfg: cfg,
		svc: NewService(log, cfg, st, pw),
	}
}

// Service returns the underlying flow service.
func (h *Handler) Service() *Service {
	if h == nil {
		return nil
	}
	return h.svc
}

// Register wires broker routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/delete", h.handleDelete)
	mux.HandleFunc("/sessions", h.handleSessions)
	mux.HandleFunc("/sessions/{id}", h.handleRevoke)
	mux.HandleFunc("/apps", h.handleRegisterApp)
	mux.HandleFunc("/validate", h.handleValidate)
}

// ---- human flows ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	username, plainPassword, ok := h.credentialForm(w, r)
	if !ok {
		return
	}
	tok := secret.FromHeader(r.Header.Get("Authorization"))
	if tok.Empty() {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing Authorization header")
		return
	}
	appName := h.appQuery(r)
	ip := clientIP(r, h.cfg.TrustProxy)

	issued, err := h.svc.Register(r.Context(), time.Now().UTC(), username, plainPassword, appName, tok, ip)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			redirect(w, r, "/register?err=exists")
			return
		}
		h.log.Error("broker.register.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	setSessionCookie(w, issued.ID, issued.Session.Expires)
	redirect(w, r, issued.Redirect)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	username, plainPassword, ok := h.credentialForm(w, r)
	if !ok {
		return
	}
	tok := secret.FromHeader(r.Header.Get("Authorization"))
	if tok.Empty() {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing Authorization header")
		return
	}
	appName := h.appQuery(r)
	ip := clientIP(r, h.cfg.TrustProxy)

	issued, err := h.svc.Login(r.Context(), time.Now().UTC(), username, plainPassword, appName, tok, ip)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			redirect(w, r, "/?err=notfound")
		case errors.Is(err, ErrBadPassword):
			redirect(w, r, "/?err=incorrect")
		default:
			h.log.Error("broker.login.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	setSessionCookie(w, issued.ID, issued.Session.Expires)
	redirect(w, r, issued.Redirect)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, status := h.sessionCookieID(r)
	switch status {
	case guardNoCookie:
		redirect(w, r, "/")
		return
	case guardMalformed:
		writeError(w, http.StatusBadRequest, "invalid_session_cookie", "session cookie is not a valid session id")
		return
	}

	if err := h.svc.Logout(r.Context(), id); err != nil {
		h.log.Error("broker.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	clearSessionCookie(w)
	redirect(w, r, "/")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, status := h.sessionCookieID(r)
	switch status {
	case guardNoCookie:
		redirect(w, r, "/")
		return
	case guardMalformed:
		writeError(w, http.StatusBadRequest, "invalid_session_cookie", "session cookie is not a valid session id")
		return
	}

	username, err := h.svc.DeleteAccount(r.Context(), id)
	switch {
	case err == nil:
		h.log.Info("broker.account.deleted", "username", username)
	case errors.Is(err, store.ErrSessionNotFound):
		// Stale cookie: nothing to delete, still clear it.
	default:
		h.log.Error("broker.delete.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	clearSessionCookie(w)
	redirect(w, r, "/")
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	c, status := h.resolveCaller(r)
	switch status {
	case guardMalformed:
		writeError(w, http.StatusBadRequest, "invalid_session_cookie", "session cookie is not a valid session id")
		return
	case guardNoCookie, guardMiss:
		writeError(w, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}

	owned, err := h.svc.Sessions(r.Context(), c.Session.Username)
	if err != nil {
		h.log.Error("broker.sessions.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	resp := sessionsResponse{
		Username: c.Session.Username,
		Sessions: make([]sessionInfo, 0, len(owned)),
	}
	for _, os := range owned {
		resp.Sessions = append(resp.Sessions, sessionInfo{
			ID:        os.ID.String(),
			ExpiresAt: os.Expires,
			IP:        os.IP,
			App:       os.App,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "target id is not a valid session id")
		return
	}

	callerID, status := h.sessionCookieID(r)
	switch status {
	case guardMalformed:
		writeError(w, http.StatusBadRequest, "invalid_session_cookie", "session cookie is not a valid session id")
		return
	case guardNoCookie:
		// No caller identity: nothing is removed, but the response is the
		// same unconditional redirect as every other outcome of this flow.
		redirect(w, r, "/sessions")
		return
	}

	if _, err := h.svc.Revoke(r.Context(), callerID, targetID); err != nil {
		h.log.Error("broker.revoke.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	redirect(w, r, "/sessions")
}

// ---- app flows ----

func (h *Handler) handleRegisterApp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// No caller authentication: any requester may register an app and learn
	// its secret. This is the broker's documented trust gap.
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	url := strings.TrimSpace(q.Get("url"))
	if name == "" || url == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and url are required")
		return
	}

	if _, err := h.svc.RegisterApp(r.Context(), name, url); err != nil {
		h.log.Error("broker.app.register.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	redirect(w, r, "/")
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tok := secret.FromHeader(r.Header.Get("Authorization"))
	if tok.Empty() {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing Authorization header")
		return
	}

	q := r.URL.Query()
	ssid, err := uuid.Parse(strings.TrimSpace(q.Get("ssid")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "ssid is not a valid session id")
		return
	}
	appName := strings.TrimSpace(q.Get("name"))

	v, err := h.svc.Validate(r.Context(), time.Now().UTC(), ssid, appName, tok)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "unknown_session", "no such session")
		case errors.Is(err, ErrSessionExpired):
			writeError(w, http.StatusUnauthorized, "session_expired", "session is expired")
		case errors.Is(err, store.ErrAppNotFound):
			writeError(w, http.StatusNotFound, "unknown_app", "no such app")
		case errors.Is(err, ErrSecretMismatch):
			writeError(w, http.StatusUnauthorized, "unauthorized", "secret mismatch")
		default:
			h.log.Error("broker.validate.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{Username: v.Username, App: v.App})
}

// ---- request parsing helpers ----

// credentialForm reads the username/password form body, bounded by
// MaxBodyBytes. The body is fully consumed here, before any store access.
func (h *Handler) credentialForm(w http.ResponseWriter, r *http.Request) (username, plainPassword string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", "malformed form body")
		return "", "", false
	}

	username = strings.TrimSpace(r.PostFormValue("username"))
	plainPassword = r.PostFormValue("password")
	if username == "" || plainPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid_form", "username and password are required")
		return "", "", false
	}
	return username, plainPassword, true
}

// appQuery returns the ?app= query value, defaulting to the broker's own
// app-name context.
func (h *Handler) appQuery(r *http.Request) string {
	app := strings.TrimSpace(r.URL.Query().Get("app"))
	if app == "" {
		return h.cfg.DefaultApp
	}
	return app
}

// sessionCookieID reads and parses the session cookie without resolving it.
func (h *Handler) sessionCookieID(r *http.Request) (uuid.UUID, guardStatus) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return uuid.Nil, guardNoCookie
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil, guardMalformed
	}
	return id, guardOK
}
