package common

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common/constants"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

// Claims are the claims of a backend-issued token. The backend signs only
// sub, iat and exp. Role is filled in from the token when present, otherwise
// it is resolved from the backend by the Admin middleware.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == constants.RoleAdmin
}

func VerifyToken(c context.Context, secretKey string, token string) (*Claims, error) {
	c, span := otel.Tracer.Start(c, "VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	claims := &Claims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Name,
			jwt.SigningMethodHS384.Name,
			jwt.SigningMethodHS512.Name,
		}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, fmt.Errorf("%w: %w", inErrors.ErrTokenInvalid, err)
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "validating token").Logger()
	if !jwtToken.Valid {
		inErrors.HandleError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return nil, inErrors.ErrTokenInvalid
	}
	if claims.Subject == "" {
		inErrors.HandleError(inErrors.ErrEmptySubject, span)
		logger.Error().Err(inErrors.ErrEmptySubject).Msg(inErrors.ErrEmptySubject.Error())
		return nil, inErrors.ErrEmptySubject
	}
	logger.Info().
		Str(log.KeyUserID, claims.Subject).
		Str(log.KeyRole, claims.Role).
		Msg("validated token")

	return claims, nil
}

// SignToken issues a token shaped like the backend's: sub, iat and exp, plus
// role when it is not empty.
func SignToken(secretKey string, subject string, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}

type claimsKey struct{}
type tokenKey struct{}

func AttachClaims(c context.Context, claims *Claims, rawToken string) context.Context {
	c = context.WithValue(c, claimsKey{}, claims)
	return context.WithValue(c, tokenKey{}, rawToken)
}

func ClaimsFromContext(c context.Context) (*Claims, bool) {
	claims, ok := c.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// BearerTokenFromContext returns the raw token the caller authenticated with,
// so it can be forwarded to the backend.
func BearerTokenFromContext(c context.Context) string {
	token, _ := c.Value(tokenKey{}).(string)
	return token
}

func IsAuthenticated(c context.Context) bool {
	_, ok := ClaimsFromContext(c)
	return ok
}

// WithRole returns c carrying a copy of its claims with role set.
func WithRole(c context.Context, role string) context.Context {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return c
	}
	resolved := *claims
	resolved.Role = role
	return AttachClaims(c, &resolved, BearerTokenFromContext(c))
}

func IsAdmin(c context.Context) bool {
	claims, ok := ClaimsFromContext(c)
	return ok && claims.IsAdmin()
}
