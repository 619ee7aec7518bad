package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID   = "user_id"
	CtxEmail    = "email"
	CtxRole     = "role"
	CtxToken    = "token"
	CtxTokenExp = "token_exp"
)

var (
	errMissingAuth = errors.New("authorization header missing")
	errBadAuth     = errors.New("authorization header must be a bearer token")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint
	Email  string
	Role   models.Role
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (Identity, bool) {
	id := c.GetUint(CtxUserID)
	if id == 0 {
		return Identity{}, false
	}
	role, _ := c.Get(CtxRole)
	r, _ := role.(models.Role)
	return Identity{UserID: id, Email: c.GetString(CtxEmail), Role: r}, true
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errMissingAuth
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errBadAuth
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), nil
}

func authenticate(c *gin.Context, tm *utils.TokenManager, token string) bool {
	claims, err := tm.ParseToken(token)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		c.Abort()
		return false
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, utils.ErrInvalidToken)
		c.Abort()
		return false
	}

	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxRole, role)
	c.Set(CtxToken, token)
	exp := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	c.Set(CtxTokenExp, exp)
	return true
}

// AuthMiddleware requires a valid, non-revoked bearer token.
func AuthMiddleware(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		if !authenticate(c, tm, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth authenticates when a token is present and lets anonymous
// requests through otherwise. A present but invalid token is still rejected.
func OptionalAuth(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, err := bearerToken(c)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		if !authenticate(c, tm, token) {
			return
		}
		c.Next()
	}
}
