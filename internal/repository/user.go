package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/model"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"gorm.io/gorm"
)

// UserLookup selects a single user. Exactly one field must be set.
type UserLookup struct {
	ID       uint
	Username string
	Email    string
}

// UserUpdate lists the mutable columns; nil fields are left untouched.
type UserUpdate struct {
	Password   *string
	Token      *string
	IsVerified *bool
	FirstName  *string
	LastName   *string
}

func (u UserUpdate) columns() map[string]any {
	cols := make(map[string]any, 5)
	if u.Password != nil {
		cols["password"] = *u.Password
	}
	if u.Token != nil {
		cols["token"] = *u.Token
	}
	if u.IsVerified != nil {
		cols["is_verified"] = *u.IsVerified
	}
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	return cols
}

// UserStore is the persistence contract the auth flows depend on.
type UserStore interface {
	// FindByUsernameOrEmail returns every user whose username or email
	// matches case-insensitively.
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]model.User, error)
	// FindOne returns nil, nil when no user matches.
	FindOne(ctx context.Context, lookup UserLookup) (*model.User, error)
	Insert(ctx context.Context, user *model.User, passwordHash string) (model.SafeUser, error)
	UpdateByID(ctx context.Context, id uint, update UserUpdate) (model.SafeUser, error)
	List(ctx context.Context) ([]model.SafeUser, error)
}

type UserRepository struct {
	db *gorm.DB
}

var _ UserStore = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "FindByUsernameOrEmail")

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return nil, apperrors.WrapError(apperrors.ErrInvalidArgument, errors.New("username or email is required"))
	}

	start := time.Now()
	query := r.db.WithContext(ctx).Model(&model.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("LOWER(username) = ?", username).Or("LOWER(email) = ?", email)
	case username != "":
		query = query.Where("LOWER(username) = ?", username)
	default:
		query = query.Where("LOWER(email) = ?", email)
	}

	var users []model.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to look up users by username or email").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "Users matched by username or email").
		Int("matches", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, nil
}

func (r *UserRepository) FindOne(ctx context.Context, lookup UserLookup) (*model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "FindOne")

	query := r.db.WithContext(ctx)
	set := 0
	if lookup.ID != 0 {
		query = query.Where("id = ?", lookup.ID)
		set++
	}
	if lookup.Username != "" {
		query = query.Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(lookup.Username)))
		set++
	}
	if lookup.Email != "" {
		query = query.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(lookup.Email)))
		set++
	}
	if set != 1 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidArgument, errors.New("exactly one of id, username or email is required"))
	}

	start := time.Now()
	var user model.User
	err := query.Take(&user).Error
	duration := time.Since(start)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.DebugWithContext(ctx, "User not found").
			Uint("lookup_id", lookup.ID).
			Duration(duration).
			Log()
		return nil, nil
	}
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get user").
			Uint("lookup_id", lookup.ID).
			Duration(duration).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "User retrieved successfully").
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return &user, nil
}

func (r *UserRepository) Insert(ctx context.Context, user *model.User, passwordHash string) (model.SafeUser, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "Insert")

	row := *user
	row.ID = 0
	row.Username = strings.ToLower(strings.TrimSpace(row.Username))
	row.Email = strings.ToLower(strings.TrimSpace(row.Email))
	row.Password = passwordHash
	row.Token = nil

	start := time.Now()
	err := r.db.WithContext(ctx).Create(&row).Error
	duration := time.Since(start)

	if isUniqueViolation(err) {
		logger.WarnWithContext(ctx, "Insert hit a unique constraint").
			Duration(duration).
			Log()
		return model.SafeUser{}, apperrors.WrapError(apperrors.ErrCredentialsInUse, err)
	}
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to insert user").
			Duration(duration).
			Err(err).
			Log()
		return model.SafeUser{}, err
	}

	logger.InfoWithContext(ctx, "User inserted").
		Uint("user_id", row.ID).
		Duration(duration).
		Log()

	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return row.Safe(), nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id uint, update UserUpdate) (model.SafeUser, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "UpdateByID")

	start := time.Now()
	if cols := update.columns(); len(cols) > 0 {
		result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			logger.ErrorWithContext(ctx, "Failed to update user").
				Uint("user_id", id).
				Duration(time.Since(start)).
				Err(result.Error).
				Log()
			return model.SafeUser{}, result.Error
		}
	}

	var safe model.SafeUser
	err := r.db.WithContext(ctx).Model(&model.User{}).Select(model.SafeColumns).Where("id = ?", id).Take(&safe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.WarnWithContext(ctx, "User to update not found").
			Uint("user_id", id).
			Log()
		return model.SafeUser{}, apperrors.NotFoundUser(id)
	}
	if err != nil {
		return model.SafeUser{}, err
	}

	logger.DebugWithContext(ctx, "User updated successfully").
		Uint("user_id", id).
		Duration(time.Since(start)).
		Log()

	return safe, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.SafeUser, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "List")

	start := time.Now()
	var users []model.SafeUser
	if err := r.db.WithContext(ctx).Model(&model.User{}).Select(model.SafeColumns).Order("id").Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to list users").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "Users listed").
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, nil
}

// isUniqueViolation recognises translated gorm errors and raw driver messages
// from drivers without an error translator.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
