package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/IDON3O/TeamLobby-sub000/internal/config"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware requires a valid Bearer token and sets userID, userAlias,
// and isGuest on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := parseClaims(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

func parseClaims(tokenString string) (gojwt.MapClaims, error) {
	token, err := gojwt.Parse(tokenString, func(token *gojwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if _, ok := claims["sub"].(string); !ok {
		return nil, fmt.Errorf("missing subject claim")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims gojwt.MapClaims) {
	userID, _ := claims["sub"].(string)
	alias, _ := claims["alias"].(string)
	isGuest, _ := claims["guest"].(bool)
	c.Set("userID", userID)
	c.Set("userAlias", alias)
	c.Set("isGuest", isGuest)
}
