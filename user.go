package chatserver

import "sync"

// User is a registered identity. Names are unique across the registry for
// the life of the process; users are never removed.
type User struct {
	Name string

	salt []byte
	hash []byte

	mu      sync.Mutex
	session *Session // bound session, nil when logged out
}

// boundSession returns the session this user is currently logged in from,
// or nil.
func (u *User) boundSession() *Session {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.session
}

// login binds s to u iff u is not already bound and password verifies
// against u's stored credential. Login on an already-bound user fails
// silently: this is not a password-incorrect signal, and callers must not
// use it to probe whether a login attempt merely guessed wrong.
func (u *User) login(s *Session, password string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.session != nil {
		return false
	}
	if !verifyCredential(password, u.salt, u.hash) {
		return false
	}
	u.session = s
	return true
}

// logout idempotently clears the bound session.
func (u *User) logout() {
	u.mu.Lock()
	u.session = nil
	u.mu.Unlock()
}

// UserRegistry is the process-wide set of registered users, unique by name.
type UserRegistry struct {
	mu    sync.Mutex
	users map[string]*User
}

// NewUserRegistry returns an empty user registry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{users: make(map[string]*User)}
}

// Register creates a new User with the given name and password, returning
// true iff name was not already registered.
func (r *UserRegistry) Register(name, password string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[name]; ok {
		return false
	}
	salt, hash := makeCredential(password)
	r.users[name] = &User{Name: name, salt: salt, hash: hash}
	return true
}

// Find returns the User with the given name, or nil if none is registered.
func (r *UserRegistry) Find(name string) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[name]
}
