package chatserver

import "testing"

func TestMakeCredentialRoundTrip(t *testing.T) {
	salt, hash := makeCredential("hunter2")
	if len(salt) != saltLen {
		t.Fatalf("salt length = %d, want %d", len(salt), saltLen)
	}
	if len(hash) != hashLen {
		t.Fatalf("hash length = %d, want %d", len(hash), hashLen)
	}
	if !verifyCredential("hunter2", salt, hash) {
		t.Fatal("verifyCredential failed for the correct password")
	}
	if verifyCredential("wrong", salt, hash) {
		t.Fatal("verifyCredential succeeded for the wrong password")
	}
}

func TestMakeCredentialSaltIsRandom(t *testing.T) {
	salt1, _ := makeCredential("same-password")
	salt2, _ := makeCredential("same-password")
	if string(salt1) == string(salt2) {
		t.Fatal("two credentials for the same password got the same salt")
	}
}
