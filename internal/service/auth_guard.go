package service

import (
	"context"
	"errors"

	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/metrics"
)

// Guard rejection reasons reported to metrics.
const (
	RejectTokenExpired = "token_expired"
	RejectTokenInvalid = "token_invalid"
	RejectUserGone     = "user_gone"
	RejectLookupFailed = "lookup_failed"
)

// AuthGuard maps a bearer token to the identity it belongs to.
type AuthGuard struct {
	tokens   TokenService
	repoUser repository.UserStore
	metrics  metrics.Recorder
}

func NewAuthGuard(tokens TokenService, repo repository.UserStore, recorder metrics.Recorder) *AuthGuard {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthGuard{
		tokens:   tokens,
		repoUser: repo,
		metrics:  recorder,
	}
}

// Authenticate verifies token and re-reads the user it names. Every failure is
// an UnauthorizedError wrapping the cause; a deleted account fails even when
// the signature is good.
func (g *AuthGuard) Authenticate(ctx context.Context, token string) (dto.Identity, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Authenticate")

	claims, err := g.tokens.Verify(token)
	if err != nil {
		reason := RejectTokenInvalid
		if errors.Is(err, apperrors.ErrTokenExpired) {
			reason = RejectTokenExpired
		}
		logger.WarnWithContext(ctx, "Bearer token rejected").
			String("reason", reason).
			Err(err).
			Log()
		g.metrics.RecordGuardRejection(reason)
		return dto.Identity{}, apperrors.WrapError(apperrors.ErrUnauthorized, err)
	}

	user, err := g.repoUser.FindOne(ctx, repository.UserLookup{ID: claims.ID})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to resolve token owner").
			Uint("user_id", claims.ID).
			Err(err).
			Log()
		g.metrics.RecordGuardRejection(RejectLookupFailed)
		return dto.Identity{}, unexpected(err)
	}
	if user == nil {
		logger.WarnWithContext(ctx, "Token owner no longer exists").
			Uint("user_id", claims.ID).
			Log()
		g.metrics.RecordGuardRejection(RejectUserGone)
		return dto.Identity{}, apperrors.WrapError(apperrors.ErrUnauthorized, errors.New("token owner no longer exists"))
	}

	return dto.Identity{ID: user.ID, Username: user.Username}, nil
}
