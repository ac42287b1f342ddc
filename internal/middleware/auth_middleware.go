package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/thriftmap/thriftmap-backend/internal/errors"
	"github.com/thriftmap/thriftmap-backend/pkg/identity"
)

// Context keys for the authenticated caller
const (
	IdentityKey  = "identity"
	UserUIDKey   = "user_uid"
	UserEmailKey = "user_email"
)

type AuthMiddleware struct {
	verifier identity.Verifier
}

func NewAuthMiddleware(verifier identity.Verifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
// ok is false when the header is present but malformed.
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, false
	}
	return parts[1], true, true
}

// Authenticate rejects the request unless it carries a verified ID token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, present, ok := bearerToken(c)
		if !present {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Authorization header must be: Bearer <token>")
			c.Abort()
			return
		}

		id, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if errors.Is(err, identity.ErrExpiredToken) {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Your session has expired")
			} else {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		setIdentity(c, id)
		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_uid": id.UID,
		})

		c.Next()
	}
}

// OptionalAuthenticate verifies a token when one is sent and otherwise
// continues as a guest. Invalid tokens are also treated as guests.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, present, ok := bearerToken(c)
		if !present || !ok {
			log.Debug("No usable authorization header - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		id, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setIdentity(c, id)
		log.Debug("User authenticated successfully (optional)", map[string]interface{}{
			"user_uid": id.UID,
		})

		c.Next()
	}
}

func setIdentity(c *gin.Context, id *identity.Identity) {
	c.Set(IdentityKey, id)
	c.Set(UserUIDKey, id.UID)
	c.Set(UserEmailKey, id.Email)
}

// GetIdentity returns the verified caller, if any
func GetIdentity(c *gin.Context) (*identity.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	id, ok := value.(*identity.Identity)
	return id, ok
}

// GetUserUID extracts the identity-provider uid from context
func GetUserUID(c *gin.Context) (string, bool) {
	uid := c.GetString(UserUIDKey)
	return uid, uid != ""
}
