package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

// Principal is the holder of a mock session.
type Principal struct {
	ID          string   `json:"id"`
	Tier        string   `json:"tier"`
	Permissions []string `json:"permissions"`
	HWID        string   `json:"hwid,omitempty"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	Tier        string   `json:"tier"`
	Permissions []string `json:"permissions"`
	HWID        string   `json:"hwid,omitempty"`
	Type        string   `json:"typ"`
	jwt.RegisteredClaims
}

// Principal returns the holder described by the claims.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.Subject, Tier: c.Tier, Permissions: c.Permissions, HWID: c.HWID}
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// Issue signs an access token for p and returns it with its expiry.
func (t *TokenIssuer) Issue(p Principal) (string, time.Time, error) {
	return t.sign(p, TokenAccess, t.ttl)
}

// IssueRefresh signs a refresh token for p.
func (t *TokenIssuer) IssueRefresh(p Principal) (string, time.Time, error) {
	return t.sign(p, TokenRefresh, t.refreshTTL)
}

func (t *TokenIssuer) sign(p Principal, typ string, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)

	claims := Claims{
		Tier:        p.Tier,
		Permissions: p.Permissions,
		HWID:        p.HWID,
		Type:        typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer and expiry of an access token.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	return t.verify(tokenString, TokenAccess)
}

// VerifyRefresh checks a refresh token.
func (t *TokenIssuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return t.verify(tokenString, TokenRefresh)
}

func (t *TokenIssuer) verify(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure token's signing method matches
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
