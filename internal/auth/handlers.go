package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/db/repository"
	httperrors "github.com/gokatarajesh/mymath-exams/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc      *Service
	oauthSvc     *OAuthService
	secureCookie bool
	logger       zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints. oauthSvc may be nil.
func NewHTTPHandlers(authSvc *Service, oauthSvc *OAuthService, secureCookie bool, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc:      authSvc,
		oauthSvc:     oauthSvc,
		secureCookie: secureCookie,
		logger:       logger.With().Str("component", "auth_http").Logger(),
	}
}

// Mount registers the identity routes on mux.
func (h *HTTPHandlers) Mount(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/auth/register", h.Register)
	mux.HandleFunc("POST /v1/auth/login", h.Login)
	mux.HandleFunc("POST /v1/auth/refresh", h.RefreshToken)
	mux.HandleFunc("GET /v1/oauth/{provider}/start", h.OAuthStart)
	mux.HandleFunc("GET /v1/oauth/{provider}/callback", h.OAuthCallback)
	mux.Handle("GET /v1/users/me", RequireAuth(http.HandlerFunc(h.GetMe)))
}

// Register handles POST /v1/auth/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Register(r.Context(), req)
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeAlreadyExists, "Email already registered")
		return
	case errors.Is(err, ErrEmailRequired):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "email")
		return
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "password")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("registration failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeRegistrationFailed, "Registration failed")
		return
	}

	h.respondJSON(w, http.StatusCreated, tokenBody(user, tokens))
}

// Login handles POST /v1/auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Login(r.Context(), req)
	if errors.Is(err, ErrInvalidCredentials) {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeLoginFailed, "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("login failed")
		httperrors.RespondInternalError(w, "Login failed")
		return
	}

	h.respondJSON(w, http.StatusOK, tokenBody(user, tokens))
}

// RefreshToken handles POST /v1/auth/refresh
func (h *HTTPHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	tokens, err := h.authSvc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeRefreshFailed, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

// OAuthStart handles GET /v1/oauth/{provider}/start
func (h *HTTPHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if !h.oauthSvc.Configured() {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	state := uuid.New().String()
	authURL, err := h.oauthSvc.StartOAuthFlow(r.PathValue("provider"), state)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthStartFailed, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/v1/oauth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"auth_url": authURL,
		"state":    state,
	})
}

// OAuthCallback handles GET /v1/oauth/{provider}/callback
func (h *HTTPHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthSvc.Configured() {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	provider := r.PathValue("provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthMissingCode, "Authorization code required")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthInvalidState, "Invalid or missing state parameter")
		return
	}

	info, err := h.oauthSvc.HandleOAuthCallback(r.Context(), provider, code)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthCallbackFailed, err.Error())
		return
	}

	user, tokens, err := h.authSvc.LoginOAuth(r.Context(), provider, info)
	if err != nil {
		h.logger.Error().Err(err).Str("provider", provider).Msg("OAuth sign-in failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeUserCreationFailed, "Could not sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/v1/oauth",
		MaxAge:   -1,
		HttpOnly: true,
	})

	h.respondJSON(w, http.StatusOK, tokenBody(user, tokens))
}

// GetMe handles GET /v1/users/me (requires auth middleware)
func (h *HTTPHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.GetUser(r.Context(), CurrentUserID(r.Context()))
	if errors.Is(err, ErrUnknownUser) {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Account no longer exists")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("load current user failed")
		httperrors.RespondInternalError(w, "Failed to load user")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      user.ID.String(),
		"email":        user.Email,
		"display_name": user.DisplayName,
	})
}

func tokenBody(user *User, tokens *TokenPair) map[string]interface{} {
	return map[string]interface{}{
		"user_id":       user.ID.String(),
		"display_name":  user.DisplayName,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
