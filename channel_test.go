package chatserver

import "testing"

func TestChannelRegistryCreateIsUniqueByName(t *testing.T) {
	r := NewChannelRegistry()
	if !r.Create("lobby") {
		t.Fatal("first CREATE of lobby should succeed")
	}
	if r.Create("lobby") {
		t.Fatal("second CREATE of lobby should fail")
	}
}

func TestChannelRegistryListNamesSorted(t *testing.T) {
	r := NewChannelRegistry()
	r.Create("zeta")
	r.Create("alpha")
	r.Create("mu")

	got := r.ListNames()
	want := []string{"alpha", "mu", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("ListNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListNames() = %v, want %v", got, want)
		}
	}
}

func TestChannelAddMemberIsIdempotent(t *testing.T) {
	ch := &Channel{Name: "lobby", index: make(map[*User]bool)}
	u := &User{Name: "alice"}
	if !ch.addMember(u) {
		t.Fatal("first JOIN should succeed")
	}
	if ch.addMember(u) {
		t.Fatal("second JOIN by the same user should fail")
	}
}

func TestChannelBroadcastSkipsOfflineMembersAndPreservesOrder(t *testing.T) {
	ch := &Channel{Name: "lobby", index: make(map[*User]bool)}

	alice := &User{Name: "alice"}
	bob := &User{Name: "bob"}
	carol := &User{Name: "carol"} // never bound to a session

	sAlice := newSession(nil, nil)
	sBob := newSession(nil, nil)
	alice.session = sAlice
	bob.session = sBob

	ch.addMember(bob)
	ch.addMember(alice)
	ch.addMember(carol)

	ch.broadcast(alice, []string{"hello", "there"})

	wantLine := "RECV alice lobby hello there"
	if got := popPending(sBob); got != wantLine {
		t.Fatalf("bob got %q, want %q", got, wantLine)
	}
	if got := popPending(sAlice); got != wantLine {
		t.Fatalf("alice got %q, want %q", got, wantLine)
	}
}

func popPending(s *Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return ""
	}
	return s.pending[0]
}
