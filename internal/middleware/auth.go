package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/common/constants"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
)

// Auth admits requests carrying a valid bearer token and exposes its claims
// through common.ClaimsFromContext.
func Auth(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get(constants.HeaderAuthorization)
			token, found := cutBearer(authorization)
			if !found {
				logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteFailed(c, w, http.StatusUnauthorized, inErrors.ErrEmptyAuth)
				return
			}

			claims, err := common.VerifyToken(c, secretKey, token)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteFailed(c, w, http.StatusUnauthorized, inErrors.ErrTokenInvalid)
				return
			}

			c = common.AttachClaims(c, claims, token)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// RoleResolver looks up the role of the caller whose bearer token is in the
// context.
type RoleResolver interface {
	Role(c context.Context) (string, error)
}

// Admin is Auth plus the ADMIN role. Tokens without a role claim have their
// role resolved through roles.
func Admin(secretKey string, roles RoleResolver) mux.MiddlewareFunc {
	auth := Auth(secretKey)
	return func(next http.Handler) http.Handler {
		return auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Admin").Logger()

			if claims, _ := common.ClaimsFromContext(c); claims.Role == "" && roles != nil {
				logger = logger.With().Str(log.KeyProcess, "resolving role").Logger()
				logger.Debug().Msg("resolving role")
				role, err := roles.Role(c)
				if err != nil {
					err = fmt.Errorf("failed resolving role with error=%w", err)
					logger.Error().Err(err).Msg(err.Error())
					inHttp.WriteFailed(c, w, http.StatusForbidden, inErrors.ErrForbidden)
					return
				}
				c = common.WithRole(c, role)
				logger.Debug().Str(log.KeyRole, role).Msg("resolved role")
			}

			if !common.IsAdmin(c) {
				logger.Error().Err(inErrors.ErrForbidden).Msg(inErrors.ErrForbidden.Error())
				inHttp.WriteFailed(c, w, http.StatusForbidden, inErrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(c))
		}))
	}
}

func cutBearer(authorization string) (string, bool) {
	if len(authorization) < len("bearer ") || !strings.EqualFold(authorization[:len("bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authorization[len("bearer "):])
	return token, token != ""
}
