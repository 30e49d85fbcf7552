package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/model"
	"github.com/Payphone-Digital/auth-service/internal/repository"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/metrics"
)

type UserService struct {
	repoUser        repository.UserStore
	hasher          PasswordHasher
	tokens          TokenService
	metrics         metrics.Recorder
	tokenExpiration time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo repository.UserStore, hasher PasswordHasher, tokens TokenService, recorder metrics.Recorder, tokenExpiration time.Duration) *UserService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &UserService{
		repoUser:        repo,
		hasher:          hasher,
		tokens:          tokens,
		metrics:         recorder,
		tokenExpiration: tokenExpiration,
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// unexpected passes domain errors through and hides everything else behind
// UnexpectedError.
func unexpected(err error) error {
	if apperrors.IsDomainError(err) {
		return err
	}
	return apperrors.WrapError(apperrors.ErrUnexpected, err)
}

// Register creates a user. Username and email are compared and stored
// lower-cased; a collision on either reports the same generic conflict.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Register")

	username := normalize(req.Username)
	email := normalize(req.Email)

	logger.InfoWithContext(ctx, "Registering user").
		String("username", username).
		Log()

	existing, err := s.repoUser.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		logger.ErrorWithContext(ctx, "Uniqueness check failed").
			Err(err).
			Log()
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return dto.UserResponse{}, unexpected(err)
	}
	if len(existing) > 0 {
		logger.WarnWithContext(ctx, "Username or email already in use").
			String("username", username).
			Log()
		s.metrics.RecordRegistration(metrics.ResultConflict)
		return dto.UserResponse{}, apperrors.ErrCredentialsInUse
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return dto.UserResponse{}, err
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	safe, err := s.repoUser.Insert(ctx, user, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrCredentialsInUse) {
			// lost a race with a concurrent registration
			s.metrics.RecordRegistration(metrics.ResultConflict)
			return dto.UserResponse{}, apperrors.ErrCredentialsInUse
		}
		logger.ErrorWithContext(ctx, "Failed to insert user").
			Err(err).
			Log()
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return dto.UserResponse{}, unexpected(err)
	}

	logger.InfoWithContext(ctx, "User registered").
		Uint("user_id", safe.ID).
		Log()
	s.metrics.RecordRegistration(metrics.ResultSuccess)

	return dto.NewUserResponse(safe), nil
}

// Login resolves the user by exactly one of username or email, checks the
// password and persists a freshly signed token, replacing the previous one.
func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Login")

	username := normalize(req.Username)
	email := normalize(req.Email)

	if (username == "") == (email == "") {
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, apperrors.WrapError(apperrors.ErrInvalidArgument, errors.New("exactly one of username or email is required"))
	}

	identifier := username
	if identifier == "" {
		identifier = email
	}

	// rejected before the lookup so known and unknown accounts fail alike
	if req.Password == "" {
		logger.LogAuth(identifier, "login", false)
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, apperrors.ErrInvalidCredentials
	}

	user, err := s.repoUser.FindOne(ctx, repository.UserLookup{Username: username, Email: email})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to look up user").
			Err(err).
			Log()
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, unexpected(err)
	}

	if user == nil {
		// equalise timing with the wrong-password path
		s.burnComparison(req.Password)
		logger.LogAuth(identifier, "login", false)
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, apperrors.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(req.Password, user.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Password verification failed").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, err
	}
	if !ok {
		logger.LogAuth(identifier, "login", false)
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(dto.Identity{ID: user.ID, Username: user.Username}, s.tokenExpiration)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, err
	}

	safe, err := s.repoUser.UpdateByID(ctx, user.ID, repository.UserUpdate{Token: &token})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to persist token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		s.metrics.RecordLogin(metrics.ResultFailure)
		return dto.LoginResponse{}, unexpected(err)
	}

	logger.LogAuth(identifier, "login", true)
	s.metrics.RecordLogin(metrics.ResultSuccess)

	return dto.LoginResponse{
		UserResponse: dto.NewUserResponse(safe),
		Token:        token,
	}, nil
}

// ChangePassword replaces the caller's password hash. The current token is
// left as is.
func (s *UserService) ChangePassword(ctx context.Context, identity dto.Identity, newPassword string) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ChangePassword")

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash new password").
			Uint("user_id", identity.ID).
			Err(err).
			Log()
		s.metrics.RecordPasswordChange(metrics.ResultFailure)
		return err
	}

	if _, err := s.repoUser.UpdateByID(ctx, identity.ID, repository.UserUpdate{Password: &hash}); err != nil {
		logger.WarnWithContext(ctx, "Failed to update password").
			Uint("user_id", identity.ID).
			Err(err).
			Log()
		s.metrics.RecordPasswordChange(metrics.ResultFailure)
		return unexpected(err)
	}

	logger.InfoWithContext(ctx, "Password updated").
		Uint("user_id", identity.ID).
		Log()
	s.metrics.RecordPasswordChange(metrics.ResultSuccess)

	return nil
}

func (s *UserService) List(ctx context.Context) ([]dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "List")

	users, err := s.repoUser.List(ctx)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to list users").
			Err(err).
			Log()
		return nil, unexpected(err)
	}

	logger.DebugWithContext(ctx, "Users listed").
		Int("returned_count", len(users)).
		Log()

	return dto.NewUserResponses(users), nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "GetByID")

	user, err := s.repoUser.FindOne(ctx, repository.UserLookup{ID: id})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("lookup_id", id).
			Err(err).
			Log()
		return dto.UserResponse{}, unexpected(err)
	}
	if user == nil {
		return dto.UserResponse{}, apperrors.NotFoundUser(id)
	}

	return dto.NewUserResponse(user.Safe()), nil
}

// burnComparison runs one bcrypt comparison against a throwaway hash.
func (s *UserService) burnComparison(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash == "" || password == "" {
		return
	}
	_, _ = s.hasher.Verify(password, s.dummyHash)
}
