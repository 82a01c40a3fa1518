package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the bearer token issued by the central auth
// service and loads the caller identity into the context. Entries are
// attributed to this identity at creation time.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		token := parts[1]

		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})

		if err != nil || !parsedToken.Valid {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		userName, ok := claims["user_name"].(string)
		if !ok || userName == "" {
			c.JSON(401, gin.H{"error": "invalid user name in token"})
			c.Abort()
			return
		}

		c.Set("user_name", userName)
		if firstName, ok := claims["first_name"].(string); ok {
			c.Set("first_name", firstName)
		}
		if lastName, ok := claims["last_name"].(string); ok {
			c.Set("last_name", lastName)
		}

		c.Next()
	}
}
