package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/models"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

// ContextUserIDKey holds the authenticated user id as a plain string.
const ContextUserIDKey = "user_id"

// TokenValidator parses an access token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// authenticate validates the bearer token and stores the caller id on c.
func authenticate(c *gin.Context, tokens TokenValidator) error {
	raw, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return err
	}
	claims, err := tokens.ValidateToken(raw)
	if err != nil {
		return err
	}
	c.Set(ContextUserIDKey, claims.UserID)
	return nil
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
