package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues and verifies signed login challenges. The challenge is
// stateless: address, nonce, and issue time ride inside the token, and the
// sign-this message is rebuilt from them at login.
type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

type ChallengeClaims struct {
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
	jwt.RegisteredClaims
}

// Message reconstructs the exact text the wallet was asked to sign.
func (c *ChallengeClaims) Message() string {
	return BuildMessage(c.Address, c.Nonce, c.IssuedAt.Time)
}

func BuildMessage(address, nonce string, issued time.Time) string {
	return fmt.Sprintf(
		"qisati wants you to sign in with your wallet:\n%s\n\nNonce: %s\nIssued At: %s",
		address, nonce, issued.UTC().Format(time.RFC3339),
	)
}

func (ts TokenService) Issue(address string) (token, message string, exp time.Time, err error) {
	now := time.Now().Truncate(time.Second)
	exp = now.Add(ts.Duration)
	nonce := uuid.NewString()

	claims := ChallengeClaims{
		Address: address,
		Nonce:   nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   address,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tok.SignedString(ts.Secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign challenge: %w", err)
	}
	return token, BuildMessage(address, nonce, now), exp, nil
}

func (ts TokenService) Parse(tokenString string) (*ChallengeClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &ChallengeClaims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse challenge: %w", err)
	}

	claims, ok := tok.Claims.(*ChallengeClaims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid challenge claims")
	}
	return claims, nil
}
