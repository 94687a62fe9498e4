package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	apperrors "github.com/ratehub/ratehub-backend/internal/errors"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	ContextUserKey   = "current_user"
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "user_email"
	ContextRoleKey   = "user_role"
)

// AuthMiddleware authenticates requests from the session cookie. The token
// proves identity, but authorization always runs against the current user
// row, so a deleted account or changed role takes effect immediately.
type AuthMiddleware struct {
	jwtSecret  string
	cookieName string
	userRepo   repository.UserRepository
}

func NewAuthMiddleware(jwtSecret, cookieName string, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:  jwtSecret,
		cookieName: cookieName,
		userRepo:   userRepo,
	}
}

// extractToken reads the session cookie, falling back to the Authorization
// header for non-browser clients.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (m *AuthMiddleware) resolveUser(c *gin.Context, token string) (*model.User, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := m.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func setUserContext(c *gin.Context, user *model.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextEmailKey, user.Email)
	c.Set(ContextRoleKey, user.Role)
}

// Authenticate rejects the request unless it carries a valid token for an
// account that still exists.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := m.resolveUser(c, token)
		if err != nil {
			switch {
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized,
					apperrors.AuthTokenExpired, "Session has expired. Please log in again.")
			case errors.Is(err, gorm.ErrRecordNotFound):
				logger.Warn("Token presented for deleted account", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				apperrors.RespondWithError(c, http.StatusUnauthorized,
					apperrors.AuthTokenInvalid, "Account no longer exists.")
			default:
				apperrors.RespondWithError(c, http.StatusUnauthorized,
					apperrors.AuthTokenInvalid, "Invalid authentication token.")
			}
			c.Abort()
			return
		}

		setUserContext(c, user)
		c.Next()
	}
}

// OptionalAuthenticate attaches the user when a valid token is present and
// treats everything else as an anonymous request. Public pages render for
// guests even with a stale cookie.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := m.resolveUser(c, token)
		if err != nil {
			c.Next()
			return
		}

		setUserContext(c, user)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		logger.Warn("Request blocked by role gate", map[string]interface{}{
			"role": role,
			"path": c.Request.URL.Path,
		})
		apperrors.Forbidden(c, "")
		c.Abort()
	}
}

func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	value, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(model.UserRole)
	return role, ok
}
