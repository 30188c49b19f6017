package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/api/middleware"
	"github.com/hasanRafi2002/asgn-12-server/internal/auth"
	"github.com/hasanRafi2002/asgn-12-server/internal/cache"
	"github.com/hasanRafi2002/asgn-12-server/internal/identity"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgEmailRegistered    = "Email is already registered"
)

// AuthHandler issues and revokes API tokens for identity-provider accounts.
type AuthHandler struct {
	provider  identity.IProvider
	denylist  cache.ITokenDenylist
	jwtSecret string
	jwtTTL    time.Duration
}

// NewAuthHandler creates a new AuthHandler. denylist may be nil.
func NewAuthHandler(provider identity.IProvider, denylist cache.ITokenDenylist, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		provider:  provider,
		denylist:  denylist,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse is the public view of the authenticated account.
type ProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func validateEmail(email string) string {
	if email == "" {
		return `"email" is required`
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return `"email" must be a valid email`
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return `"password" is required`
	}
	if len(password) < 6 {
		return `"password" length must be at least 6 characters long`
	}
	return ""
}

func (r *registerRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	switch n := len([]rune(r.Name)); {
	case n == 0:
		return `"name" is required`
	case n < 3:
		return `"name" length must be at least 3 characters long`
	case n > 30:
		return `"name" length must be less than or equal to 30 characters long`
	}
	if msg := validateEmail(r.Email); msg != "" {
		return msg
	}
	return validatePassword(r.Password)
}

func (r *loginRequest) validate() string {
	r.Email = strings.TrimSpace(r.Email)
	if msg := validateEmail(r.Email); msg != "" {
		return msg
	}
	return validatePassword(r.Password)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondMessage(c, http.StatusBadRequest, msg)
		return
	}

	user, err := h.provider.CreateUser(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			respondMessage(c, http.StatusBadRequest, MsgEmailRegistered)
			return
		}
		respondError(c, fmt.Errorf("register %s: %w", req.Email, err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondMessage(c, http.StatusBadRequest, msg)
		return
	}

	ctx := c.Request.Context()
	user, err := h.provider.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondMessage(c, http.StatusBadRequest, MsgInvalidCredentials)
			return
		}
		respondError(c, fmt.Errorf("lookup %s: %w", req.Email, err))
		return
	}
	if user.Disabled {
		respondMessage(c, http.StatusBadRequest, MsgInvalidCredentials)
		return
	}

	// Providers without server-side password checks report (false, nil) for
	// every password, so only an explicit mismatch rejects the login.
	if _, err := h.provider.VerifyPassword(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, identity.ErrInvalidPassword) {
			respondMessage(c, http.StatusBadRequest, MsgInvalidCredentials)
			return
		}
		respondError(c, fmt.Errorf("verify password %s: %w", req.Email, err))
		return
	}

	profile := ProfileResponse{ID: user.UID, Name: user.DisplayName, Email: user.Email}
	token, err := auth.GenerateJWT(auth.Identity{ID: profile.ID, Name: profile.Name, Email: profile.Email}, h.jwtSecret, h.jwtTTL)
	if err != nil {
		respondError(c, fmt.Errorf("issue token: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": profile})
}

// Logout handles POST /api/auth/logout. A valid bearer token is revoked until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.denylist != nil {
		if token, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := auth.ValidateJWT(token, h.jwtSecret); err == nil && claims.RegisteredClaims.ID != "" {
				if err := h.denylist.Revoke(c.Request.Context(), claims.RegisteredClaims.ID, claims.RemainingTTL()); err != nil {
					utils.Logger().Warn("failed to revoke token on logout", zap.Error(err))
				}
			}
		}
	}
	respondMessage(c, http.StatusOK, "Logged out successfully")
}

// Profile handles GET /api/auth/profile. Requires AuthMiddleware.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, middleware.MsgNoToken)
		return
	}

	user, err := h.provider.GetUser(c.Request.Context(), claims.ID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, fmt.Errorf("profile %s: %w", claims.ID, err))
		return
	}

	name := user.DisplayName
	if name == "" {
		name = "Unknown"
	}
	c.JSON(http.StatusOK, ProfileResponse{ID: user.UID, Name: name, Email: user.Email})
}
