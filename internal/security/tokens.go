package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or was signed for the other token class.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is well-formed and correctly
	// signed but past its expiry.
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the minimal claim set carried by both token classes.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
}

// TokenProvider issues and verifies HS256 access and refresh JWTs. The two
// classes use disjoint secrets: a refresh secret never validates an access
// token and vice versa.
type TokenProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenProvider returns a TokenProvider signing access tokens with
// accessSecret for accessTTL and refresh tokens with refreshSecret for
// refreshTTL.
func NewTokenProvider(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access JWT for the given user.
func (p *TokenProvider) IssueAccess(userID, role, email string) (string, error) {
	return p.issue(p.accessSecret, p.accessTTL, userID, role, email)
}

// IssueRefresh issues a long-lived refresh JWT for the given user. The caller
// must persist only a one-way hash of the returned token.
func (p *TokenProvider) IssueRefresh(userID, role, email string) (string, error) {
	return p.issue(p.refreshSecret, p.refreshTTL, userID, role, email)
}

func (p *TokenProvider) issue(secret []byte, ttl time.Duration, userID, role, email string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:  role,
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates signature and expiry of an access token and returns
// its claims.
func (p *TokenProvider) VerifyAccess(tokenString string) (*Claims, error) {
	return p.verify(tokenString, p.accessSecret)
}

// VerifyRefresh validates signature and expiry of a refresh token and returns
// its claims. Passing a token structurally is not proof the secret is on
// record; callers must still match it against a stored session hash.
func (p *TokenProvider) VerifyRefresh(tokenString string) (*Claims, error) {
	return p.verify(tokenString, p.refreshSecret)
}

func (p *TokenProvider) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
