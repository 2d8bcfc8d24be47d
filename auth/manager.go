package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/utils"
)

type LoginRequest struct {
	Username string
	Password string
	Employee bool
	ViaQR    bool
}

type RegisterRequest struct {
	Username      string
	Phone         string
	Password      string
	AdminUsername string
	AdminPassword string
}

// Manager owns the identity of one device: who is logged in, the persisted copy of
// that identity and the auto-logout countdown for tables.
type Manager struct {
	accounts        AccountStore
	resolver        *Resolver
	registrar       *Registrar
	identities      IdentityStore
	autoLogoutAfter time.Duration
	onAutoLogout    func(Identity)

	mu          sync.Mutex
	current     *Identity
	logoutTimer autoLogout
}

type Option func(*Manager)

func WithAutoLogoutAfter(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.autoLogoutAfter = d
		}
	}
}

// WithOccupancyListener forwards every registered session to fn.
func WithOccupancyListener(fn func(models.ActiveSession)) Option {
	return func(m *Manager) {
		m.registrar.OnRegistered = fn
	}
}

// WithAutoLogoutHook calls fn with the identity that was just logged out by the timer.
func WithAutoLogoutHook(fn func(Identity)) Option {
	return func(m *Manager) {
		m.onAutoLogout = fn
	}
}

func NewManager(accounts AccountStore, sessions SessionStore, identities IdentityStore, opts ...Option) *Manager {
	m := &Manager{
		accounts:        accounts,
		resolver:        NewResolver(accounts),
		registrar:       NewRegistrar(sessions),
		identities:      identities,
		autoLogoutAfter: AutoLogoutAfter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Login(ctx context.Context, req LoginRequest) (Identity, error) {
	account, err := m.resolver.Resolve(ctx, req.Username, req.Password, req.Employee)
	if err != nil {
		utils.InfoLogger.WithError(err).WithField("username", req.Username).Info("login rejected")
		return Identity{}, err
	}
	return m.establish(ctx, account, req.ViaQR), nil
}

func (m *Manager) LoginBySlug(ctx context.Context, slug string, viaQR bool) (Identity, error) {
	account, err := m.resolver.ResolveSlug(ctx, slug)
	if err != nil {
		utils.InfoLogger.WithError(err).WithField("slug", slug).Info("slug login rejected")
		return Identity{}, err
	}
	return m.establish(ctx, account, viaQR), nil
}

// LoginWithQR logs in with whatever a scanned code contained: a deep link or bare
// slug, or a cart payload naming a table.
func (m *Manager) LoginWithQR(ctx context.Context, payload string) (Identity, error) {
	code, err := ParseQRPayload(payload)
	if err != nil {
		return Identity{}, err
	}
	if code.Slug != "" {
		return m.LoginBySlug(ctx, code.Slug, true)
	}
	return m.Login(ctx, LoginRequest{Username: code.Table, ViaQR: true})
}

func (m *Manager) establish(ctx context.Context, account models.Account, viaQR bool) Identity {
	m.registrar.Register(ctx, account, viaQR)

	identity := IdentityFromAccount(account)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &identity
	if err := m.identities.Save(identity.persisted()); err != nil {
		utils.ErrorLogger.WithError(err).Error("persisting identity")
	}

	if identity.IsStaff() {
		m.logoutTimer.cancel()
	} else {
		m.armLocked()
	}
	return identity
}

// Register creates an employee account, gated on admin credentials supplied with
// the request rather than on whoever is logged in on the device.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (models.Account, error) {
	return RegisterEmployee(ctx, m.resolver, m.accounts, req)
}

// RegisterEmployee re-authenticates the admin named in req and then provisions a
// new employee account.
func RegisterEmployee(ctx context.Context, resolver *Resolver, accounts AccountStore, req RegisterRequest) (models.Account, error) {
	const op = "register"
	if _, err := resolver.ResolveAdmin(ctx, req.AdminUsername, req.AdminPassword); err != nil {
		utils.InfoLogger.WithError(err).WithField("admin", req.AdminUsername).Info("registration gate rejected")
		return models.Account{}, err
	}
	if req.Phone == "" {
		return models.Account{}, newError(KindInvalid, op, errors.New("phone is required for staff"))
	}

	account := models.Account{
		Username:   req.Username,
		Phone:      req.Phone,
		IsEmployee: true,
	}
	if err := ProvisionAccount(ctx, accounts, &account, req.Password); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// ProvisionAccount inserts a new account with a generated slug. Staff need a
// password, which is stored as a bcrypt hash; tables get the default phone when
// none is given. The username check is only a fast path: the unique index on
// users.username is what actually rejects duplicates.
func ProvisionAccount(ctx context.Context, accounts AccountStore, account *models.Account, password string) error {
	const op = "provision account"
	if account.Username == "" {
		return newError(KindInvalid, op, errors.New("empty username"))
	}
	if account.IsAdmin && account.IsEmployee {
		return newError(KindInvalid, op, errors.New("account cannot be both admin and employee"))
	}
	if account.IsStaff() && password == "" {
		return newError(KindInvalid, op, errors.New("staff accounts need a password"))
	}

	exists, err := accounts.UsernameExists(ctx, account.Username)
	if err != nil {
		return storeError(op, err)
	}
	if exists {
		return newError(KindConflict, op, errors.New("username already exists"))
	}

	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return newError(KindInvalid, op, err)
		}
		account.PasswordHash = hash
	}
	if account.Phone == "" && !account.IsStaff() {
		account.Phone = models.DefaultPhone
	}
	account.Slug = Slugify(account.Username)

	if err := accounts.CreateAccount(ctx, account); err != nil {
		return storeError(op, err)
	}
	utils.InfoLogger.WithField("username", account.Username).WithField("role", account.Role()).Info("account created")
	return nil
}

// Logout forgets the device identity. The active session row is left alone: the
// table stays occupied until staff frees it.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutLocked()
}

func (m *Manager) logoutLocked() {
	m.logoutTimer.cancel()
	m.current = nil
	if err := m.identities.Clear(); err != nil {
		utils.ErrorLogger.WithError(err).Error("clearing persisted identity")
	}
}

// Restore loads the persisted identity at startup. An unreadable record is dropped.
func (m *Manager) Restore() (Identity, bool) {
	stored, err := m.identities.Load()
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("discarding unreadable persisted identity")
		if err := m.identities.Clear(); err != nil {
			utils.ErrorLogger.WithError(err).Error("clearing persisted identity")
		}
		return Identity{}, false
	}
	if stored == nil {
		return Identity{}, false
	}
	if stored.ID == "" {
		utils.ErrorLogger.Warn("discarding persisted identity without an account id")
		if err := m.identities.Clear(); err != nil {
			utils.ErrorLogger.WithError(err).Error("clearing persisted identity")
		}
		return Identity{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	identity := *stored
	m.current = &identity
	if identity.IsStaff() {
		m.logoutTimer.cancel()
	} else {
		m.armLocked()
	}
	return identity, true
}

func (m *Manager) Current() (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Identity{}, false
	}
	return *m.current, true
}

func (m *Manager) AutoLogoutArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logoutTimer.armed()
}

func (m *Manager) armLocked() {
	m.logoutTimer.arm(m.autoLogoutAfter, m.autoLogout)
}

func (m *Manager) autoLogout(gen uint64) {
	m.mu.Lock()
	if !m.logoutTimer.expire(gen) {
		m.mu.Unlock()
		return
	}
	var expired Identity
	if m.current != nil {
		expired = *m.current
	}
	m.logoutLocked()
	m.mu.Unlock()

	utils.InfoLogger.WithField("username", expired.Username).Info("table session expired")
	if m.onAutoLogout != nil {
		m.onAutoLogout(expired)
	}
}
