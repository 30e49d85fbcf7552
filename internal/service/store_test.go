package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/model"
	"github.com/Payphone-Digital/auth-service/internal/repository"
)

// memoryStore is a mutex-guarded UserStore used by the service tests.
type memoryStore struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]*model.User
	failOn string
}

var _ repository.UserStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{nextID: 1, users: make(map[uint]*model.User)}
}

var errStoreDown = errors.New("store unreachable")

func (s *memoryStore) fail(op string) error {
	if s.failOn == op {
		return errStoreDown
	}
	return nil
}

func (s *memoryStore) FindByUsernameOrEmail(_ context.Context, username, email string) ([]model.User, error) {
	if err := s.fail("FindByUsernameOrEmail"); err != nil {
		return nil, err
	}
	if username == "" && email == "" {
		return nil, apperrors.ErrInvalidArgument
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.User
	for id := uint(1); id < s.nextID; id++ {
		u, ok := s.users[id]
		if !ok {
			continue
		}
		if (username != "" && strings.EqualFold(u.Username, username)) || (email != "" && strings.EqualFold(u.Email, email)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memoryStore) FindOne(_ context.Context, lookup repository.UserLookup) (*model.User, error) {
	if err := s.fail("FindOne"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case lookup.ID != 0:
		if u, ok := s.users[lookup.ID]; ok {
			c := *u
			return &c, nil
		}
		return nil, nil
	case lookup.Username != "" || lookup.Email != "":
		for _, u := range s.users {
			if (lookup.Username != "" && strings.EqualFold(u.Username, lookup.Username)) ||
				(lookup.Email != "" && strings.EqualFold(u.Email, lookup.Email)) {
				c := *u
				return &c, nil
			}
		}
		return nil, nil
	default:
		return nil, apperrors.ErrInvalidArgument
	}
}

func (s *memoryStore) Insert(_ context.Context, user *model.User, passwordHash string) (model.SafeUser, error) {
	if err := s.fail("Insert"); err != nil {
		return model.SafeUser{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return model.SafeUser{}, apperrors.WrapError(apperrors.ErrCredentialsInUse, errors.New("unique violation"))
		}
	}

	row := *user
	row.ID = s.nextID
	row.Password = passwordHash
	s.nextID++
	s.users[row.ID] = &row
	return row.Safe(), nil
}

func (s *memoryStore) UpdateByID(_ context.Context, id uint, update repository.UserUpdate) (model.SafeUser, error) {
	if err := s.fail("UpdateByID"); err != nil {
		return model.SafeUser{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.SafeUser{}, apperrors.NotFoundUser(id)
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	if update.Token != nil {
		token := *update.Token
		u.Token = &token
	}
	if update.IsVerified != nil {
		u.IsVerified = *update.IsVerified
	}
	return u.Safe(), nil
}

func (s *memoryStore) List(context.Context) ([]model.SafeUser, error) {
	if err := s.fail("List"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SafeUser, 0, len(s.users))
	for id := uint(1); id < s.nextID; id++ {
		if u, ok := s.users[id]; ok {
			out = append(out, u.Safe())
		}
	}
	return out, nil
}

func (s *memoryStore) delete(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *memoryStore) get(id uint) model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.users[id]
}

// countingRecorder tallies metric events by name and label.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (r *countingRecorder) inc(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
}

func (r *countingRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func (r *countingRecorder) RecordRegistration(result string)   { r.inc("registration:" + result) }
func (r *countingRecorder) RecordLogin(result string)          { r.inc("login:" + result) }
func (r *countingRecorder) RecordPasswordChange(result string) { r.inc("password:" + result) }
func (r *countingRecorder) RecordGuardRejection(reason string) { r.inc("guard:" + reason) }

func (r *countingRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
