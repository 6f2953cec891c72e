// Package auth issues and verifies the HS256 tokens used by the server:
// access tokens carried in gRPC metadata and the OAuth state tokens handed
// to platform consent screens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const stateAudience = "oauth-state"

// Claims carries the standard claims plus the owning user.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// StateClaims identifies who started an OAuth handoff and for which
// workspace and platform.
type StateClaims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid"`
	WorkspaceID string `json:"wid"`
	Platform    string `json:"plt"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates an access token. Expired tokens yield
// common.ErrTokenExpired, every other failure common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secretKey))
	if err != nil {
		return "", mapParseError(err)
	}

	if !token.Valid || claims.UserID == "" || len(claims.Audience) > 0 {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// GenerateStateToken signs the OAuth state parameter.
func GenerateStateToken(userID, workspaceID, platform string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{stateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:      userID,
		WorkspaceID: workspaceID,
		Platform:    platform,
	})
	return token.SignedString(secretKey)
}

// ParseStateToken verifies a state token produced by GenerateStateToken.
func ParseStateToken(tokenString string, secretKey []byte) (*StateClaims, error) {
	claims := &StateClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secretKey), jwt.WithAudience(stateAudience))
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func keyFunc(secretKey []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	}
}

func mapParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return common.ErrTokenExpired
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
}
