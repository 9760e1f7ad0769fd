package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/relayteam/roomsync/internal/model"
)

type Generator struct {
	secret []byte
}

func New(secret string) *Generator {
	return &Generator{
		secret: []byte(secret),
	}
}

// GenerateSubscribeToken authorizes one client to read one room's push
// channel for 30 minutes.
func (g *Generator) GenerateSubscribeToken(userID, roomID string) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(30 * time.Minute)

	claims := model.ChannelSubscribeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Channel: roomID,
		RoomID:  roomID,
		UserID:  userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(g.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign subscribe JWT token: %w", err)
	}

	return tokenString, expiresAt.Unix(), nil
}

func (g *Generator) ValidateSubscribeToken(tokenString string) (*model.ChannelSubscribeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ChannelSubscribeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse subscribe token: %w", err)
	}

	claims, ok := token.Claims.(*model.ChannelSubscribeClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid subscribe token")
	}

	return claims, nil
}
