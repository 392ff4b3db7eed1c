package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims carried by a WebRTC signaling session token.
type SessionClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	RoomID   uuid.UUID `json:"room_id"`
	jwt.RegisteredClaims
}

// SessionTokenManager mints and validates short-lived WebRTC session tokens.
type SessionTokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewSessionTokenManager creates a new session token manager
func NewSessionTokenManager(secret string, expiry time.Duration) *SessionTokenManager {
	return &SessionTokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// GenerateToken creates a session token scoped to one user in one room
func (m *SessionTokenManager) GenerateToken(userID uuid.UUID, username string, roomID uuid.UUID) (string, error) {
	claims := &SessionClaims{
		UserID:   userID,
		Username: username,
		RoomID:   roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "startuphub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a session token
func (m *SessionTokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
