package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSeller  = "seller"

	ctxIdentity = "identity"
)

// Identity is the caller as asserted by the identity provider's token.
// JobLevel is 0 for users outside the approval hierarchy.
type Identity struct {
	UserID   uuid.UUID
	Role     string
	JobLevel int
}

// Auth validates HS256 bearer tokens. Tokens come from the access_token cookie or the
// Authorization header and carry sub, role and job_level claims.
type Auth struct {
	secret []byte
}

func NewAuth(secret []byte) *Auth {
	return &Auth{secret: secret}
}

// Authenticate accepts any valid token.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return a.RequireRole()
}

// RequireRole validates the token and, when roles are given, checks the caller's role
// is one of them.
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		identity, err := a.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		if len(allowedRoles) > 0 && !contains(allowedRoles, identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(ctxIdentity, identity)
		c.Next()
	}
}

// ParseToken verifies tokenString and extracts the caller identity.
func (a *Auth) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Identity{}, err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, fmt.Errorf("subject is not a user id: %w", err)
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, errors.New("role not found in token")
	}

	jobLevel := 0
	if raw, present := claims["job_level"]; present {
		// JSON numbers decode as float64.
		f, ok := raw.(float64)
		if !ok || f < 0 || f != float64(int(f)) {
			return Identity{}, errors.New("job_level must be a non-negative integer")
		}
		jobLevel = int(f)
	}

	return Identity{UserID: userID, Role: role, JobLevel: jobLevel}, nil
}

// SignToken issues a token for identity valid for ttl. Used by the dev token command and tests.
func (a *Auth) SignToken(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       identity.UserID.String(),
		"role":      identity.Role,
		"job_level": identity.JobLevel,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

// CurrentIdentity returns the identity stored by RequireRole.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func tokenFromRequest(c *gin.Context) (string, error) {
	// Try cookie first, fallback to Authorization header
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("Invalid authorization format. Expected 'Bearer <token>'")
	}
	return parts[1], nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
