package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ethiosuite/internal/inventory"
)

// AuthConfig carries the token-signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Claims is the JWT payload for a logged-in user.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// demoUsers are the built-in operator identities. Users are
// session-only; there is no account store.
var demoUsers = []inventory.User{
	{ID: "u_admin", Name: "Admin User", Email: "admin@anuinv.com", Role: inventory.RoleAdmin},
	{ID: "u_manager", Name: "Factory Supervisor", Email: "user@anuinv.com", Role: inventory.RoleFactoryManager},
}

// Login issues a token for a known demo user, or a factory-manager
// session for any other email.
func (a *InventoryAPI) Login(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := inventory.User{
		ID:    "u_" + uuid.NewString()[:8],
		Name:  strings.Split(req.Email, "@")[0],
		Email: req.Email,
		Role:  inventory.RoleFactoryManager,
	}
	for _, known := range demoUsers {
		if known.Email == req.Email {
			user = known
			break
		}
	}

	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(a.Auth.TokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.Auth.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed, "user": user})
}

// authMiddleware validates the bearer token and stashes the user.
func (a *InventoryAPI) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}
		tokenStr := strings.TrimSpace(header[len("Bearer "):])

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(a.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user", inventory.User{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
			Role:  inventory.UserRole(claims.Role),
		})
		c.Next()
	}
}

// requireAdmin gates the admin surface.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user.Role != inventory.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user, or the zero user for
// unauthenticated contexts (recorded as "System" in the audit trail).
func currentUser(c *gin.Context) inventory.User {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(inventory.User); ok {
			return user
		}
	}
	return inventory.User{}
}
