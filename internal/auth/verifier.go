package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified principal carried through a request. Only the
// email is trusted; roles come from the user store, never from the token.
type Identity struct {
	Email string
	Name  string
}

// TokenVerifier validates a bearer credential and yields the principal.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// JWTVerifier verifies HS256 tokens carrying an email claim.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return Identity{}, ErrInvalidToken
	}
	name, _ := claims["name"].(string)

	return Identity{Email: email, Name: name}, nil
}
