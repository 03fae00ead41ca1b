package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/auth"
	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
	"github.com/rohits-web03/cloudvault/internal/utils"
)

const tokenCookie = "token"

type AccountService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	LoginWithGoogle(ctx context.Context, flow string, profile auth.GoogleProfile) (*auth.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type OAuthProvider interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (auth.GoogleProfile, error)
}

type AuthOptions struct {
	SessionTTL  time.Duration
	Secure      bool // production cookies: Secure and SameSite=None
	FrontendURL string
	StateSecret string
}

type AuthHandler struct {
	accounts AccountService
	google   OAuthProvider
	state    *stateCodec
	opts     AuthOptions
	logger   *slog.Logger
}

func NewAuthHandler(accounts AccountService, google OAuthProvider, opts AuthOptions, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		google:   google,
		state:    newStateCodec(opts.StateSecret),
		opts:     opts,
		logger:   logger,
	}
}

// POST /api/v1/auth/sign-up
// Register godoc
// @Summary Register a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterInput true "New account"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload "Email already registered"
// @Router /api/v1/auth/sign-up [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input auth.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}

// POST /api/v1/auth/login
// Login godoc
// @Summary Log in with email and password
// @Description Returns a session token and also sets it as an HttpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "email, password"
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload "Invalid credentials"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	session, err := h.accounts.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data:    session,
	})
}

// POST /api/v1/auth/logout
// Logout godoc
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.opts.Secure,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged out successfully",
	})
}

// GET /api/v1/auth/me
// Me godoc
// @Summary Current user
// @Description Returns the signed-in user including storage used.
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	user, err := h.accounts.Me(r.Context(), p.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "User retrieved successfully",
		Data:    user,
	})
}

// GET /api/v1/auth/google/login
// GoogleLogin godoc
// @Summary Start Google sign-in
// @Tags Auth
// @Param redirect query string false "login or register"
// @Success 307
// @Router /api/v1/auth/google/login [get]
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Enabled() {
		utils.Fail(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	flow := r.URL.Query().Get("redirect")
	if flow != auth.FlowRegister {
		flow = auth.FlowLogin
	}

	state, err := h.state.Encode(flow)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GET /api/v1/auth/google/callback
// GoogleCallback godoc
// @Summary Google sign-in callback
// @Tags Auth
// @Success 307
// @Router /api/v1/auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	flow, err := h.state.Decode(r.FormValue("state"))
	if err != nil {
		badRequest(w, "Invalid OAuth state")
		return
	}

	profile, err := h.google.Profile(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("google sign-in failed", "error", err)
		h.redirectFrontend(w, r, "/login", "error", "google_failed")
		return
	}

	session, err := h.accounts.LoginWithGoogle(r.Context(), flow, profile)
	switch {
	case errors.Is(err, domain.ErrConflict):
		h.redirectFrontend(w, r, "/login", "error", "user_already_exists")
		return
	case errors.Is(err, domain.ErrNotFound):
		h.redirectFrontend(w, r, "/register", "error", "user_not_found")
		return
	case err != nil:
		h.logger.Error("google sign-in failed", "error", err)
		h.redirectFrontend(w, r, "/login", "error", "google_failed")
		return
	}

	h.setSessionCookie(w, session.Token)
	status := "success_login"
	if flow == auth.FlowRegister {
		status = "success_register"
	}
	h.redirectFrontend(w, r, "/drive", "status", status)
}

func (h *AuthHandler) redirectFrontend(w http.ResponseWriter, r *http.Request, path, key, value string) {
	target := h.opts.FrontendURL + path + "?" + url.Values{key: {value}}.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTTL.Seconds()),
		Secure:   h.opts.Secure,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

func (h *AuthHandler) sameSite() http.SameSite {
	if h.opts.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
