package jwt

import (
	"time"

	"github.com/IDON3O/TeamLobby-sub000/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken creates a new JWT for a user. Guest tokens carry the alias
// in the claims since guests have no registry entry to resolve it from.
func GenerateToken(userID, alias string, isGuest bool) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"alias": alias,
		"guest": isGuest,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(), // Token expires in 7 days
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}
