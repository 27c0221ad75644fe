package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Decode failure causes. Callers collapse both into a generic unauthenticated
// outcome; the distinction exists for logging only.
var (
	// ErrTokenExpired means the signature verified but the expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers forged signatures and unparseable tokens.
	ErrTokenMalformed = errors.New("token malformed or forged")
)

// Claims is the signed token payload. Access tokens carry roles; refresh
// tokens do not, so roles are always recomputed when a new pair is minted.
type Claims struct {
	UserID int64    `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes signed expiring tokens. It holds no mutable state
// and is safe for concurrent use.
//
// The signing key is derived per tenant from the server secret, so a token
// minted under one tenant verifies nowhere else. User ids are sequences local
// to each tenant schema and collide routinely; the key derivation is what
// keeps a replayed token from naming a same-numbered user elsewhere.
type Codec struct {
	secret []byte
}

// NewCodec builds a codec around the server signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) signingKey(tenant string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(tenant))
	return mac.Sum(nil)
}

// Encode signs a payload with an absolute expiry under the tenant's derived
// key. issuedAt is recorded so tokens can be checked against a per-user
// revocation watermark.
func (c *Codec) Encode(tenant string, userID int64, roles []string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.signingKey(tenant))
}

// Decode verifies the signature against the tenant's derived key, then the
// expiry. A token minted for another tenant fails here as forged. The two
// failure modes stay distinguishable for diagnostics.
func (c *Codec) Decode(tenant, raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.signingKey(tenant), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !parsed.Valid || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
