package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const reviewTokenAudience = "review"

var (
	ErrInvalidReviewToken = errors.New("invalid review token")
	ErrReviewTokenExpired = errors.New("review token expired")
)

// ReviewClaims binds one review opportunity to a hire/client pair.
type ReviewClaims struct {
	HireID   string `json:"hireId"`
	ClientID string `json:"clientId"`
	jwt.RegisteredClaims
}

// ReviewTokenSigner issues and verifies stateless review tokens. Whether a
// token was already used is decided by the hire, not by the signer.
type ReviewTokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewReviewTokenSigner(secret string, ttl time.Duration) *ReviewTokenSigner {
	return &ReviewTokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock swaps the time source; used by tests and by callers that share a clock.
func (s *ReviewTokenSigner) WithClock(now func() time.Time) *ReviewTokenSigner {
	cp := *s
	cp.now = now
	return &cp
}

func (s *ReviewTokenSigner) TTL() time.Duration {
	return s.ttl
}

func (s *ReviewTokenSigner) Issue(hireID, clientID string) (string, error) {
	if hireID == "" || clientID == "" {
		return "", errors.New("hire id and client id are required")
	}
	now := s.now()
	claims := ReviewClaims{
		HireID:   hireID,
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{reviewTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse checks signature, audience and expiry, and that both ids are present.
func (s *ReviewTokenSigner) Parse(tokenStr string) (*ReviewClaims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidReviewToken
	}
	claims := &ReviewClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, s.keyFunc,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(reviewTokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrReviewTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidReviewToken, err)
	}
	if !token.Valid || claims.HireID == "" || claims.ClientID == "" {
		return nil, ErrInvalidReviewToken
	}
	return claims, nil
}

func (s *ReviewTokenSigner) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}
