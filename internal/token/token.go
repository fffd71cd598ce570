// Package token signs and verifies the two bearer token classes. Access and
// refresh tokens use independent secrets, so a token of one class can never
// verify as the other.
package token

import (
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// bearerPattern matches "Bearer <token>" where the token has the compact
// three-part JWT shape. A cheap syntactic gate before any crypto work.
var bearerPattern = regexp.MustCompile(`^Bearer\s+([A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+)$`)

// Claims is the decoded token payload: the subject id plus the standard
// timestamps.
type Claims struct {
	ID int64 `json:"id"`
	jwt.RegisteredClaims
}

type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewCodec(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock overrides the codec's time source. Used by tests to exercise
// expiry without sleeping.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) SignAccess(userID int64) (string, error) {
	return c.sign(userID, c.accessSecret, c.accessTTL)
}

func (c *Codec) SignRefresh(userID int64) (string, error) {
	return c.sign(userID, c.refreshSecret, c.refreshTTL)
}

// VerifyAccess checks signature and expiry under the access secret. Any
// expected failure (malformed, bad signature, expired, wrong secret) yields
// nil rather than an error.
func (c *Codec) VerifyAccess(tokenString string) *Claims {
	return c.verify(tokenString, c.accessSecret)
}

// VerifyRefresh is VerifyAccess under the refresh secret.
func (c *Codec) VerifyRefresh(tokenString string) *Claims {
	return c.verify(tokenString, c.refreshSecret)
}

// ExtractBearer validates an Authorization header and returns the raw token,
// or ("", false) if the header is not a well-formed bearer JWT.
func ExtractBearer(header string) (string, bool) {
	match := bearerPattern.FindStringSubmatch(header)
	if match == nil {
		return "", false
	}

	return match[1], true
}

func (c *Codec) sign(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Codec) verify(tokenString string, secret []byte) *Claims {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil || !parsed.Valid {
		return nil
	}

	return claims
}
