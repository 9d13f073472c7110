package impl

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordServiceBcrypt(t *testing.T) {
	ps := NewPasswordServiceBcrypt(DefaultBcryptCost)

	hash, err := ps.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Fatalf("expected bcrypt cost 10 hash, got %q", hash)
	}
	if !ps.Verify(hash, "hunter22") {
		t.Fatal("correct password should verify")
	}
	if ps.Verify(hash, "hunter23") {
		t.Fatal("wrong password must not verify")
	}

	again, _ := ps.Hash("hunter22")
	if again == hash {
		t.Fatal("hashes must be salted per call")
	}
}

func TestPasswordServiceBcryptEdgeCases(t *testing.T) {
	ps := NewPasswordServiceBcrypt(0)
	if ps.cost != DefaultBcryptCost {
		t.Fatalf("out of range cost should fall back to default, got %d", ps.cost)
	}
	if _, err := ps.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected empty password error, got %v", err)
	}
	if ps.Verify("", "x") || ps.Verify("$2a$10$garbage", "") {
		t.Fatal("empty inputs must not verify")
	}
}
