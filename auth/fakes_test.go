package auth

import (
	"context"
	"sync"

	"github.com/allblack/restaurant-app/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeAccounts mirrors the repository predicates over an in-memory slice.
type fakeAccounts struct {
	mu         sync.Mutex
	accounts   []models.Account
	lookupErr  error
	createErr  error
	updateErr  error
	updates    int
	createCall int
}

func (f *fakeAccounts) add(a models.Account) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.accounts = append(f.accounts, a)
	return a
}

func (f *fakeAccounts) get(id string) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == id {
			return a
		}
	}
	return models.Account{}
}

func (f *fakeAccounts) findOne(match func(models.Account) bool) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return models.Account{}, f.lookupErr
	}
	var found []models.Account
	for _, a := range f.accounts {
		if match(a) {
			found = append(found, a)
		}
	}
	if len(found) != 1 {
		return models.Account{}, gorm.ErrRecordNotFound
	}
	return found[0], nil
}

func (f *fakeAccounts) FindEmployeeByUsername(_ context.Context, username string) (models.Account, error) {
	return f.findOne(func(a models.Account) bool { return a.Username == username && a.IsEmployee && !a.IsAdmin })
}

func (f *fakeAccounts) FindAdminByUsername(_ context.Context, username string) (models.Account, error) {
	return f.findOne(func(a models.Account) bool { return a.Username == username && a.IsAdmin })
}

func (f *fakeAccounts) FindCustomerByUsername(_ context.Context, username string) (models.Account, error) {
	return f.findOne(func(a models.Account) bool { return a.Username == username && !a.IsAdmin && !a.IsEmployee })
}

func (f *fakeAccounts) FindCustomerBySlug(_ context.Context, slug string) (models.Account, error) {
	return f.findOne(func(a models.Account) bool { return a.Slug == slug && !a.IsAdmin && !a.IsEmployee })
}

func (f *fakeAccounts) UsernameExists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	for _, a := range f.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCall++
	if f.createErr != nil {
		return f.createErr
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	f.accounts = append(f.accounts, *account)
	return nil
}

func (f *fakeAccounts) UpdatePasswordHash(_ context.Context, accountID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.accounts {
		if f.accounts[i].ID == accountID {
			f.accounts[i].PasswordHash = hash
			f.updates++
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]models.ActiveSession
	err      error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]models.ActiveSession{}}
}

func (f *fakeSessions) UpsertSession(_ context.Context, s models.ActiveSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions[s.UserID] = s
	return nil
}

func (f *fakeSessions) get(userID string) (models.ActiveSession, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	return s, ok
}

// memoryIdentities is an IdentityStore that can be told to fail.
type memoryIdentities struct {
	mu      sync.Mutex
	stored  *Identity
	loadErr error
	saveErr error
	cleared int
}

func (m *memoryIdentities) Load() (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.stored == nil {
		return nil, nil
	}
	copied := *m.stored
	return &copied, nil
}

func (m *memoryIdentities) Save(identity Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = &identity
	return nil
}

func (m *memoryIdentities) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	m.cleared++
	return nil
}

func (m *memoryIdentities) current() *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored
}

func mustHash(plain string) string {
	hash, err := HashPassword(plain)
	if err != nil {
		panic(err)
	}
	return hash
}
