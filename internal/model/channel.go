package model

import "github.com/golang-jwt/jwt/v5"

// ChannelSubscribeClaims authorize one client to read one room's push channel.
type ChannelSubscribeClaims struct {
	jwt.RegisteredClaims

	Channel string `json:"channel"`
	RoomID  string `json:"room_id"`
	UserID  string `json:"user_id"`
}
