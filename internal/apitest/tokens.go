package apitest

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"donasi/internal/models"
)

const (
	issuer          = "donasi-api"
	refreshLifetime = 7 * 24 * time.Hour
)

// issueTokens signs an access token and a refresh token for user.
func (b *Backend) issueTokens(user models.User) (accessToken, refreshToken string, err error) {
	accessToken, err = b.signToken(user, b.accessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = b.signToken(user, refreshLifetime)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// AccessToken issues a valid access token for userID, for tests that skip
// the login call.
func (b *Backend) AccessToken(userID int64) string {
	user, _ := b.User(userID)
	token, err := b.signToken(user, b.accessTTL)
	if err != nil {
		panic("apitest: sign token: " + err.Error())
	}
	return token
}

// ExpiredAccessToken issues an access token that is already expired.
func (b *Backend) ExpiredAccessToken(userID int64) string {
	user, _ := b.User(userID)
	token, err := b.signToken(user, -time.Minute)
	if err != nil {
		panic("apitest: sign token: " + err.Error())
	}
	return token
}

func (b *Backend) signToken(user models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
		},
		UserID: user.ID,
		Email:  user.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

// parseToken validates a token string and returns its claims.
func (b *Backend) parseToken(tokenStr string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return b.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
