package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-identity-go/internal/user/entity"
)

// MemoryRepo is an in-process credential store with the same semantics as
// UserRepo (unique username, case-insensitive unique email). It backs
// STORE_DRIVER=memory and the service tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[int64]entity.User
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[int64]entity.User), now: time.Now}
}

func (m *MemoryRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byUsername(username)
	return ok, nil
}

func (m *MemoryRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepo) CreateUser(ctx context.Context, u *entity.User) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return 0, ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return 0, ErrDuplicateEmail
		}
	}
	m.users[u.ID] = *u
	return u.ID, nil
}

func (m *MemoryRepo) GetCredentialsForLogin(ctx context.Context, username string) (*entity.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byUsername(username)
	if !ok {
		return nil, ErrNotFound
	}
	return &entity.Credentials{ID: u.ID, PasswordHash: u.PasswordHash}, nil
}

func (m *MemoryRepo) GetCredentialsByID(ctx context.Context, id int64) (*entity.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &entity.Credentials{ID: u.ID, PasswordHash: u.PasswordHash}, nil
}

func (m *MemoryRepo) FetchProfile(ctx context.Context, id int64) (*entity.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &entity.Profile{
		Username:    u.Username,
		Name:        u.Name,
		Surname:     u.Surname,
		Email:       u.Email,
		Fone:        u.Fone,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Active:      u.Active,
		ActivatedAt: u.ActivatedAt,
	}, nil
}

func (m *MemoryRepo) UpdateProfile(ctx context.Context, id int64, upd entity.ProfileUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Surname != nil {
		u.Surname = *upd.Surname
	}
	if upd.Fone != nil {
		u.Fone = *upd.Fone
	}
	u.UpdatedAt = m.now().UTC()
	m.users[id] = u
	return nil
}

func (m *MemoryRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = m.now().UTC()
	m.users[id] = u
	return nil
}

func (m *MemoryRepo) DeleteUser(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// caller holds mu
func (m *MemoryRepo) byUsername(username string) (entity.User, bool) {
	for _, u := range m.users {
		if u.Username == username {
			return u, true
		}
	}
	return entity.User{}, false
}
