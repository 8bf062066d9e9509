package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	accounts   service.AccountService
	jwtService auth.JWTService
	revoker    auth.TokenRevoker
	authConfig config.AuthConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	accounts service.AccountService,
	jwtService auth.JWTService,
	revoker auth.TokenRevoker,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if accounts == nil || jwtService == nil || revoker == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("accounts, jwtService and revoker are required for AuthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		accounts:   accounts,
		jwtService: jwtService,
		revoker:    revoker,
		authConfig: authConfig,
		logger:     logger.With(slog.String("component", "auth_handler")),
		now:        time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	resp, err := h.issueTokens(r, user.ID, user.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}
	resp.User = user

	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	resp, err := h.issueTokens(r, user.ID, user.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}
	resp.User = user

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh. The presented refresh token is
// revoked and a new token pair is issued.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredRefreshToken) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Refresh token expired", err)
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	revoked, err := h.revoker.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to refresh token", err)
		return
	}
	if revoked {
		log.Warn("revoked refresh token presented", slog.String("user_id", claims.UserID.String()))
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, err := h.accounts.GetAccount(r.Context(), claims.UserID)
	if err != nil || !user.Active {
		if err != nil && MapErrorToStatusCode(err) == http.StatusInternalServerError {
			HandleAPIError(w, r, err, "Failed to refresh token")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	}

	if err := auth.RevokeClaims(r.Context(), h.revoker, claims, h.now()); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to refresh token", err)
		return
	}

	resp, err := h.issueTokens(r, user.ID, user.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Debug("token pair refreshed", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout. The caller's access token is revoked,
// along with the refresh token in the body when one is given.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	claims, ok := middleware.GetClaims(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req LogoutRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	now := h.now()
	if err := auth.RevokeClaims(r.Context(), h.revoker, claims, now); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to log out", err)
		return
	}

	if req.RefreshToken != "" {
		refresh, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
		switch {
		case err != nil:
			log.Debug("ignoring invalid refresh token on logout", slog.String("error", err.Error()))
		case refresh.UserID != claims.UserID:
			log.Warn("refresh token of another account presented on logout")
		default:
			if err := auth.RevokeClaims(r.Context(), h.revoker, refresh, now); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to log out", err)
				return
			}
		}
	}

	log.Info("logged out", slog.String("user_id", claims.UserID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// issueTokens generates an access and refresh token pair.
func (h *AuthHandler) issueTokens(r *http.Request, userID uuid.UUID, email string) (*AuthResponse, error) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID, email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID, email)
	if err != nil {
		return nil, err
	}

	expiresAt := h.now().UTC().Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute)
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.Format(time.RFC3339),
	}, nil
}
