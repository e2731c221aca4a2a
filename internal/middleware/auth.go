package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rideboard/internal/access"
	"rideboard/internal/jwt"
)

const (
	// ContextUserID holds the authenticated user's id.
	ContextUserID = "user_id"
	// ContextClaims holds the validated *jwt.Claims.
	ContextClaims = "claims"

	// SecretHeader carries a ride's capability secret.
	SecretHeader = "X-Ride-Secret"
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextClaims, claims)
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header with Bearer token is required",
			})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a token is present and
// lets anonymous requests through. A present but invalid token is rejected.
func OptionalAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// UserID returns the authenticated user's id, if any.
func UserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// Requester assembles the identity and capability behind the request.
func Requester(c *gin.Context) access.Requester {
	req := access.Requester{Secret: strings.TrimSpace(c.GetHeader(SecretHeader))}
	if v, exists := c.Get(ContextClaims); exists {
		if claims, ok := v.(*jwt.Claims); ok {
			req.UserID = claims.UserID
			req.IsAdmin = claims.IsAdmin()
		}
	}
	return req
}
