package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/auth"
	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/models"
)

const identityKey = "identity"

// ValidateToken authenticates every request behind it. The token only
// proves who is calling; role and active status are read back from the
// users table so deactivation and demotion apply to tokens already in
// the wild.
func ValidateToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is missing"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		userID, err := auth.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is deactivated"})
			return
		}

		c.Set(identityKey, authz.Identity{UserID: user.ID, Role: user.Role()})
		c.Next()
	}
}

// OptionalAuth establishes an identity when a valid token is presented
// but lets anonymous requests through. Catalog reads sit behind this:
// browsing needs no account, while an admin browsing with a token also
// sees deactivated entries.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		userID, err := auth.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		var user models.User
		if err := db.First(&user, userID).Error; err != nil || !user.IsActive {
			c.Next()
			return
		}
		c.Set(identityKey, authz.Identity{UserID: user.ID, Role: user.Role()})
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by ValidateToken. Calling
// it outside an authenticated route returns the zero Identity, which
// holds no capabilities.
func CurrentIdentity(c *gin.Context) authz.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return authz.Identity{}
	}
	id, _ := v.(authz.Identity)
	return id
}
