package auth

import (
	"errors"
	"time"

	"github.com/srisabarish06/Notoria/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

func GenerateAccessToken(userID uint64, tokenVersion uint64) (string, error) {
	return generateToken(userID, tokenVersion, AccessTokenTTL, config.AppConfig.JWTSecret)
}

func GenerateRefreshToken(userID uint64, tokenVersion uint64) (string, error) {
	return generateToken(userID, tokenVersion, RefreshTokenTTL, config.AppConfig.JWTRefreshSecret)
}

func generateToken(userID uint64, tokenVersion uint64, ttl time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       userID,
		"token_version": tokenVersion,
		"exp":           time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func VerifyAccessToken(tokenString string) (*jwt.Token, error) {
	return verifyToken(tokenString, config.AppConfig.JWTSecret)
}

func VerifyRefreshToken(tokenString string) (*jwt.Token, error) {
	return verifyToken(tokenString, config.AppConfig.JWTRefreshSecret)
}

func verifyToken(tokenString, secret string) (*jwt.Token, error) {
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !jwtToken.Valid {
		return nil, errors.New("token invalid")
	}

	return jwtToken, nil
}

// GetDataFromToken extracts the user ID and token version from a verified token.
func GetDataFromToken(token *jwt.Token) (uint64, uint64, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, 0, errors.New("user_id not found in token")
	}

	tokenVersion, ok := claims["token_version"].(float64)
	if !ok {
		return 0, 0, errors.New("token_version not found in token")
	}

	return uint64(userID), uint64(tokenVersion), nil
}
