package encstream

import (
	"bytes"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if len(k1) != KeySize {
		t.Errorf("key length: got %d, want %d", len(k1), KeySize)
	}

	k2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if bytes.Equal(k1, k2) {
		t.Error("two generated keys are identical")
	}
}

func TestRandomKeyProvider(t *testing.T) {
	var p RandomKeyProvider

	key, err := p.ProvideKey()
	if err != nil {
		t.Fatalf("ProvideKey failed: %v", err)
	}
	if len(key) != KeySize {
		t.Errorf("key length: got %d, want %d", len(key), KeySize)
	}
}

func TestPasswordKeyProvider_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef0123456789abcdef")
	params := Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 2}

	k1, err := NewPasswordKeyProvider([]byte("hunter2"), salt, params).ProvideKey()
	if err != nil {
		t.Fatalf("ProvideKey failed: %v", err)
	}
	if len(k1) != KeySize {
		t.Errorf("key length: got %d, want %d", len(k1), KeySize)
	}

	k2, err := NewPasswordKeyProvider([]byte("hunter2"), salt, params).ProvideKey()
	if err != nil {
		t.Fatalf("ProvideKey failed: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("same password and salt derived different keys")
	}

	otherSalt := []byte("ffffffffffffffffffffffffffffffff")
	k3, err := NewPasswordKeyProvider([]byte("hunter2"), otherSalt, params).ProvideKey()
	if err != nil {
		t.Fatalf("ProvideKey failed: %v", err)
	}
	if bytes.Equal(k1, k3) {
		t.Error("different salts derived the same key")
	}
}

func TestPasswordKeyProviderPBKDF2(t *testing.T) {
	salt := []byte("0123456789abcdef")

	for _, hf := range []HashFunc{SHA256, SHA512} {
		params := PBKDF2Params{Iterations: 1000, HashFunc: hf}

		k1, err := NewPasswordKeyProviderPBKDF2([]byte("hunter2"), salt, params).ProvideKey()
		if err != nil {
			t.Fatalf("hash=%d: ProvideKey failed: %v", hf, err)
		}
		if len(k1) != KeySize {
			t.Errorf("hash=%d: key length: got %d, want %d", hf, len(k1), KeySize)
		}

		k2, err := NewPasswordKeyProviderPBKDF2([]byte("hunter2"), salt, params).ProvideKey()
		if err != nil {
			t.Fatalf("hash=%d: ProvideKey failed: %v", hf, err)
		}
		if !bytes.Equal(k1, k2) {
			t.Errorf("hash=%d: derivation not deterministic", hf)
		}
	}
}

func TestPasswordKeyProvider_EmptyInputs(t *testing.T) {
	params := Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 2}

	if _, err := NewPasswordKeyProvider(nil, []byte("salt"), params).ProvideKey(); err == nil {
		t.Error("expected error for empty password")
	}
	if _, err := NewPasswordKeyProvider([]byte("pw"), nil, params).ProvideKey(); err == nil {
		t.Error("expected error for empty salt")
	}
}

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt(32)
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	if len(salt) != 32 {
		t.Errorf("salt length: got %d, want 32", len(salt))
	}
}
