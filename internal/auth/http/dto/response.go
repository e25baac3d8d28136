package dto

import (
	"time"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	userDto "github.com/allisson/incidenthub/internal/user/http/dto"
)

// TokenPairResponse carries a fresh credential pair.
type TokenPairResponse struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User userDto.UserResponse `json:"user"`
	TokenPairResponse
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToTokenPairResponse converts a domain token pair.
func ToTokenPairResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:           pair.AccessToken,
		AccessTokenExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshExpiresAt,
	}
}

// ToSessionResponse converts a domain session.
func ToSessionResponse(session *authDomain.Session) SessionResponse {
	return SessionResponse{
		User:              userDto.ToUserResponse(session.User),
		TokenPairResponse: ToTokenPairResponse(&session.Tokens),
	}
}
