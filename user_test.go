package chatserver

import "testing"

func TestUserRegistryRegisterIsUniqueByName(t *testing.T) {
	r := NewUserRegistry()
	if !r.Register("alice", "hunter2") {
		t.Fatal("first REGISTER of alice should succeed")
	}
	if r.Register("alice", "hunter2") {
		t.Fatal("second REGISTER of alice should fail")
	}
}

func TestUserLoginRequiresCorrectPassword(t *testing.T) {
	r := NewUserRegistry()
	r.Register("alice", "hunter2")
	u := r.Find("alice")

	s := newSession(nil, nil)
	if u.login(s, "wrong") {
		t.Fatal("login with wrong password should fail")
	}
	if !u.login(s, "hunter2") {
		t.Fatal("login with correct password should succeed")
	}
	if u.boundSession() != s {
		t.Fatal("user should be bound to the session after a successful login")
	}
}

func TestUserLoginFailsSilentlyWhenAlreadyBound(t *testing.T) {
	r := NewUserRegistry()
	r.Register("alice", "hunter2")
	u := r.Find("alice")

	s1 := newSession(nil, nil)
	s2 := newSession(nil, nil)

	if !u.login(s1, "hunter2") {
		t.Fatal("first login should succeed")
	}
	// A second login attempt from a different session must fail, even with
	// the right password: it is not a password-incorrect signal.
	if u.login(s2, "hunter2") {
		t.Fatal("login on an already-bound user should fail")
	}
}

func TestUserLogoutAllowsRelogin(t *testing.T) {
	r := NewUserRegistry()
	r.Register("alice", "hunter2")
	u := r.Find("alice")

	s1 := newSession(nil, nil)
	u.login(s1, "hunter2")
	u.logout()

	s2 := newSession(nil, nil)
	if !u.login(s2, "hunter2") {
		t.Fatal("login should succeed again after logout")
	}
}
