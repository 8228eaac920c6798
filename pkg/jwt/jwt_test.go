package jwt

import (
	"testing"

	"github.com/IDON3O/TeamLobby-sub000/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGenerateToken(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	tokenString, err := GenerateToken("u1", "Ann", true)
	assert.NoError(t, err)

	token, err := gojwt.Parse(tokenString, func(*gojwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims := token.Claims.(gojwt.MapClaims)
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "Ann", claims["alias"])
	assert.Equal(t, true, claims["guest"])
}
