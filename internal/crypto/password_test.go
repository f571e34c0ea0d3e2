package crypto

import (
	"strings"
	"testing"
)

// testParams keeps hashing fast in tests.
var testParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHasherHash(t *testing.T) {
	hash, err := NewHasher(DefaultHashParams()).Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("Hash() algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[3] != "m=65536,t=3,p=2" {
		t.Errorf("Hash() params = %q, want %q", parts[3], "m=65536,t=3,p=2")
	}
	if strings.Contains(hash, "correct-horse-battery-staple") {
		t.Error("Hash() leaked the plaintext password")
	}
}

func TestHasherVerify(t *testing.T) {
	h := NewHasher(testParams)

	hash, err := h.Hash("testpass123")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	ok, err := h.Verify("testpass123", hash)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !ok {
		t.Error("Verify() returned false for correct password")
	}

	ok, err = h.Verify("wrongpass", hash)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if ok {
		t.Error("Verify() returned true for wrong password")
	}
}

func TestHasherVerifyUsesStoredParams(t *testing.T) {
	hash, err := NewHasher(testParams).Hash("secret")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	ok, err := NewHasher(DefaultHashParams()).Verify("secret", hash)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !ok {
		t.Error("Verify() should use the parameters encoded in the hash")
	}
}

func TestHasherSaltsDiffer(t *testing.T) {
	h := NewHasher(testParams)
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Error("Hash() produced identical hashes for same password (salt should differ)")
	}
}

func TestHasherVerifyInvalidHash(t *testing.T) {
	h := NewHasher(testParams)
	if _, err := h.Verify("password", "invalid-hash-format"); err != ErrInvalidHashFormat {
		t.Errorf("Verify() error = %v, want ErrInvalidHashFormat", err)
	}
	if _, err := h.Verify("password", "$argon2id$v=1$m=1,t=1,p=1$AAAA$AAAA"); err != ErrIncompatibleVersion {
		t.Errorf("Verify() error = %v, want ErrIncompatibleVersion", err)
	}
}
