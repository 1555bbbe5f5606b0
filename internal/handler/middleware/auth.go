package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/jwt"
	"booking-engine/internal/usecase"
	"booking-engine/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxUserIDKey   = "user_id"
	ctxUserRoleKey = "user_role"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

// tokenRejected reports whether err is about the token or its subject
// rather than a failed lookup.
func tokenRejected(err error) bool {
	return errs.Is(err, jwt.ErrInvalidToken) ||
		errs.Is(err, jwt.ErrExpiredToken) ||
		errs.Is(err, user.ErrInvalidRole) ||
		errs.Is(err, usecase.ErrUnknownAccount) ||
		errs.Is(err, usecase.ErrRoleMismatch)
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.Abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		actor, err := m.tokenValidator.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errs.Is(err, usecase.ErrInactiveAccount):
			httperr.Abort(c, http.StatusForbidden, "Account is deactivated")
			return
		case tokenRejected(err):
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		default:
			slog.Error("Token subject lookup failed", "error", err.Error())
			httperr.Abort(c, http.StatusInternalServerError, internalErrorMessage)
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			httperr.Abort(c, http.StatusInternalServerError, internalErrorMessage)
			return
		}
		if !slices.Contains(roles, role) {
			httperr.Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (user.Role, bool) {
	userRole, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return "", false
	}

	role, ok := userRole.(user.Role)
	return role, ok
}

// GetActor returns the authenticated caller set by RequireAuth.
func GetActor(c *gin.Context) (shared.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return shared.Actor{}, false
	}
	role, ok := GetUserRole(c)
	if !ok {
		return shared.Actor{}, false
	}
	return shared.Actor{UserID: id, Role: role}, true
}

// SetActor is used by tests that bypass token validation.
func SetActor(c *gin.Context, a shared.Actor) {
	c.Set(ctxUserIDKey, a.UserID)
	c.Set(ctxUserRoleKey, a.Role)
}
