package mockapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CjlConsultoria/convivium2/internal/auth"
)

const issuer = "convivium-mock"

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// mint signs an HS256 access token for userID.
func (s signer) mint(userID int64, email string) (string, error) {
	if userID <= 0 {
		return "", errors.New("mockapi: user id is required")
	}
	now := s.now().UTC()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verify returns the user id carried by token or auth.ErrInvalidToken.
func (s signer) verify(token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, auth.ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, auth.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now), jwt.WithIssuedAt())
	if err != nil {
		return 0, auth.ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return 0, auth.ErrInvalidToken
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, auth.ErrInvalidToken
	}
	return id, nil
}
