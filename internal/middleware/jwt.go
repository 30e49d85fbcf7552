package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to the identity it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (dto.Identity, error)
}

type JWTMiddleware struct {
	guard Authenticator
}

func NewJWTMiddleware(guard Authenticator) *JWTMiddleware {
	return &JWTMiddleware{guard: guard}
}

// RequireAuth rejects requests without a valid "Bearer <token>" header and
// stores the caller's identity for the handler.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(constants.HeaderAuthorization))
		if !ok {
			logger.GetLogger().Warn("Missing or malformed Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			abortWithError(c, apperrors.WrapError(apperrors.ErrUnauthorized, errors.New("missing bearer token")))
			return
		}

		identity, err := m.guard.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.GetLogger().Warn("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
			abortWithError(c, err)
			return
		}

		c.Set(constants.GinKeyIdentity, identity)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), identity.ID))

		logger.GetLogger().Debug("User authenticated successfully",
			zap.Uint("user_id", identity.ID),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdentityFrom returns the identity stored by RequireAuth.
func IdentityFrom(c *gin.Context) (dto.Identity, bool) {
	value, exists := c.Get(constants.GinKeyIdentity)
	if !exists {
		return dto.Identity{}, false
	}
	identity, ok := value.(dto.Identity)
	return identity, ok
}
