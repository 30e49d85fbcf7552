package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the JWT payload: the identity plus registered claims.
type TokenClaims struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens.
type TokenService interface {
	// Sign issues a token for identity. A non-positive expiration uses the
	// service default.
	Sign(identity dto.Identity, expiration time.Duration) (string, error)
	Verify(token string) (dto.Identity, error)
}

type JWTService struct {
	secretKey         []byte
	defaultExpiration time.Duration
	now               func() time.Time
}

var _ TokenService = (*JWTService)(nil)

func NewJWTService(secretKey string, defaultExpiration time.Duration) *JWTService {
	if defaultExpiration <= 0 {
		defaultExpiration = constants.DefaultTokenExpiration
	}
	return &JWTService{
		secretKey:         []byte(secretKey),
		defaultExpiration: defaultExpiration,
		now:               time.Now,
	}
}

// WithClock replaces the time source for issuing and validating tokens.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

func (s *JWTService) Sign(identity dto.Identity, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = s.defaultExpiration
	}

	now := s.now()
	claims := TokenClaims{
		ID:       identity.ID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(identity.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrUnexpected, err)
	}
	return token, nil
}

func (s *JWTService) Verify(tokenString string) (dto.Identity, error) {
	if tokenString == "" {
		return dto.Identity{}, apperrors.WrapError(apperrors.ErrTokenInvalid, errors.New("empty token"))
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return s.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dto.Identity{}, apperrors.WrapError(apperrors.ErrTokenExpired, err)
		}
		return dto.Identity{}, apperrors.WrapError(apperrors.ErrTokenInvalid, err)
	}

	if claims.IssuedAt != nil && claims.IssuedAt.After(s.now().Add(constants.TokenClockSkew)) {
		return dto.Identity{}, apperrors.WrapError(apperrors.ErrTokenInvalid, jwt.ErrTokenUsedBeforeIssued)
	}

	if claims.ID == 0 || claims.Username == "" {
		return dto.Identity{}, apperrors.WrapError(apperrors.ErrTokenInvalid, errors.New("token carries no identity"))
	}

	return dto.Identity{ID: claims.ID, Username: claims.Username}, nil
}
