// Package token implements the signed, stateless bearer credential: issuance
// with embedded subject/role/expiry claims, and validation that never trusts
// a claim before the signature checks out.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/ecommerce-platform/identity-service/internal/api/metrics"
	"github.com/ecommerce-platform/identity-service/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Claims is the validated payload of a parsed token. The role is the user's
// role at issuance time; it is not re-read from the store afterwards.
type Claims struct {
	SubjectID string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and validates HS256-signed tokens with a process-wide secret
// loaded once at startup. Safe for unsynchronized concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret and issuing tokens valid for
// ttl. A non-positive ttl falls back to 24 hours.
func NewCodec(secret string, ttl time.Duration, log zerolog.Logger) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subjectID carrying role, iat=now and exp=now+ttl.
func (c *Codec) Issue(subjectID string, role domain.Role) (string, error) {
	now := c.now().UTC()
	claims := jwtClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(role)).Inc()
	return signed, nil
}

// Parse validates raw and returns its claims. Signature is verified before
// any embedded field is trusted. Every rejection surfaces as
// domain.ErrInvalidToken so a probing caller cannot learn which check
// failed; the distinct cause is logged and counted internally.
func (c *Codec) Parse(raw string) (*Claims, error) {
	var jc jwtClaims
	tkn, err := jwt.ParseWithClaims(raw, &jc, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid {
		c.reject(err)
		return nil, domain.ErrInvalidToken
	}

	role, roleErr := domain.ParseRole(jc.Role)
	if roleErr != nil || jc.Subject == "" || jc.ExpiresAt == nil {
		c.reject(errors.New("incomplete claim set"))
		return nil, domain.ErrInvalidToken
	}

	claims := &Claims{
		SubjectID: jc.Subject,
		Role:      role,
		ExpiresAt: jc.ExpiresAt.Time,
	}
	if jc.IssuedAt != nil {
		claims.IssuedAt = jc.IssuedAt.Time
	}
	return claims, nil
}

// Authorize parses raw and checks its role against the required set. An
// empty required set admits any authenticated caller. On success the token's
// subject id is returned. Pure computation: no I/O, no store lookup.
func (c *Codec) Authorize(raw string, required ...domain.Role) (string, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	if len(required) == 0 {
		return claims.SubjectID, nil
	}
	for _, r := range required {
		if claims.Role == r {
			return claims.SubjectID, nil
		}
	}
	return "", domain.ErrForbidden
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}

func (c *Codec) reject(err error) {
	reason := "malformed"
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		reason = "expired"
	case errors.Is(err, jwt.ErrSignatureInvalid), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		reason = "signature"
	}
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	c.log.Debug().Err(err).Str("reason", reason).Msg("token rejected")
}
