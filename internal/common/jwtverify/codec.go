package jwtverify

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	"github.com/AlibekovAA/blog-backend/internal/observability/metrics"
)

// Codec issues and verifies HS256 identity tokens. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

func NewCodec(secret string, ttl time.Duration, clk clock.Clock) (*Codec, error) {
	if len(secret) < constants.JWTSecretMinLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", constants.JWTSecretMinLength, len(secret))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(clk.Now),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("subject id is required")
	}

	now := c.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:  subjectID,
		IssuedAt: jwt.NewNumericDate(now),
		// NumericDate drops sub-second precision; round exp up so the token
		// stays valid for the whole ttl.
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl).Add(jwt.TimePrecision - 1).Truncate(jwt.TimePrecision)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	metrics.IdentityTokensIssued.Inc()
	return token, nil
}

// Verify returns the subject of a token signed by this codec that has not yet
// expired. Failures are *VerifyError values carrying a Reason.
func (c *Codec) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrAbsent
	}

	var claims jwt.RegisteredClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return "", &VerifyError{Reason: classify(err), Err: err}
	}

	if claims.Subject == "" {
		return "", &VerifyError{Reason: ReasonMalformed, Err: errors.New("missing subject")}
	}

	return claims.Subject, nil
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	default:
		return ReasonMalformed
	}
}
