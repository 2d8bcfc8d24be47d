package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "RestaurantWebApp"

// defaultJWTSecret is only used when JWT_SECRET is not configured.
const defaultJWTSecret = "TestSecretKeyAUTH1945"

var JWTSecret = []byte(defaultJWTSecret)

// SetJWTSecret replaces the signing key. An empty secret keeps the development default.
func SetJWTSecret(secret string) {
	if secret == "" {
		InfoLogger.Warn("JWT_SECRET not set, using development secret")
		JWTSecret = []byte(defaultJWTSecret)
		return
	}
	JWTSecret = []byte(secret)
}

type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(JWTSecret)
	if err != nil {
		ErrorLogger.WithError(err).Error("generating token")
		return "", err
	}
	return tokenString, nil
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}

	if IsTokenRevoked(claims.ID) {
		return nil, errors.New("token has been revoked")
	}

	return claims, nil
}
