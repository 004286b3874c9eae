package encstream

import (
	"bytes"
	"errors"
	"testing"
)

func testEngines(t *testing.T) map[string]CipherEngine {
	t.Helper()

	key := testKey()
	engines := make(map[string]CipherEngine)
	for _, suite := range []CipherSuite{CipherXSalsa20Poly1305, CipherXChaCha20Poly1305} {
		engine, err := NewCipherEngine(suite, key)
		if err != nil {
			t.Fatalf("NewCipherEngine(%v) failed: %v", suite, err)
		}
		engines[suite.String()] = engine
	}
	return engines
}

func TestCipherEngine_RoundTrip(t *testing.T) {
	nonce := make([]byte, NonceSize)
	nonce[0] = 0x42
	plaintext := patternData(1000)

	for name, engine := range testEngines(t) {
		t.Run(name, func(t *testing.T) {
			if engine.NonceSize() != NonceSize {
				t.Errorf("NonceSize: got %d, want %d", engine.NonceSize(), NonceSize)
			}
			if engine.Overhead() != TagSize {
				t.Errorf("Overhead: got %d, want %d", engine.Overhead(), TagSize)
			}

			ciphertext, err := engine.Encrypt(nonce, plaintext)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			if len(ciphertext) != len(plaintext)+TagSize {
				t.Errorf("ciphertext length: got %d, want %d", len(ciphertext), len(plaintext)+TagSize)
			}

			decrypted, err := engine.Decrypt(nonce, ciphertext)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !bytes.Equal(decrypted, plaintext) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestCipherEngine_TamperDetection(t *testing.T) {
	nonce := make([]byte, NonceSize)
	plaintext := patternData(100)

	for name, engine := range testEngines(t) {
		t.Run(name, func(t *testing.T) {
			ciphertext, err := engine.Encrypt(nonce, plaintext)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}

			ciphertext[10] ^= 0x01
			if _, err := engine.Decrypt(nonce, ciphertext); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("got %v, want ErrAuthFailed", err)
			}
		})
	}
}

func TestCipherEngine_WrongNonce(t *testing.T) {
	nonce := make([]byte, NonceSize)
	other := make([]byte, NonceSize)
	other[5] = 0xff
	plaintext := patternData(100)

	for name, engine := range testEngines(t) {
		t.Run(name, func(t *testing.T) {
			ciphertext, err := engine.Encrypt(nonce, plaintext)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}

			if _, err := engine.Decrypt(other, ciphertext); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("got %v, want ErrAuthFailed", err)
			}
		})
	}
}

func TestCipherEngine_BadNonceLength(t *testing.T) {
	for name, engine := range testEngines(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := engine.Encrypt(make([]byte, 12), []byte("data")); err == nil {
				t.Error("expected error for short nonce on Encrypt")
			}
			if _, err := engine.Decrypt(make([]byte, 12), make([]byte, 20)); err == nil {
				t.Error("expected error for short nonce on Decrypt")
			}
		})
	}
}

func TestCipherEngine_CrossSuite(t *testing.T) {
	engines := testEngines(t)
	nonce := make([]byte, NonceSize)
	plaintext := patternData(256)

	ciphertext, err := engines[CipherXSalsa20Poly1305.String()].Encrypt(nonce, plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := engines[CipherXChaCha20Poly1305.String()].Decrypt(nonce, ciphertext); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("cross-suite decrypt: got %v, want ErrAuthFailed", err)
	}
}

func TestNewCipherEngine_InvalidKey(t *testing.T) {
	for _, suite := range []CipherSuite{CipherAuto, CipherXSalsa20Poly1305, CipherXChaCha20Poly1305} {
		if _, err := NewCipherEngine(suite, make([]byte, 16)); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("%v with short key: got %v, want ErrInvalidKey", suite, err)
		}
	}
}

func TestNewCipherEngine_UnknownSuite(t *testing.T) {
	if _, err := NewCipherEngine(CipherSuite(99), testKey()); !errors.Is(err, ErrUnsupportedCipher) {
		t.Errorf("got %v, want ErrUnsupportedCipher", err)
	}
}

func TestCipherSuite_String(t *testing.T) {
	tests := []struct {
		suite CipherSuite
		want  string
	}{
		{CipherAuto, "auto"},
		{CipherXSalsa20Poly1305, "xsalsa20-poly1305"},
		{CipherXChaCha20Poly1305, "xchacha20-poly1305"},
		{CipherSuite(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.suite.String(); got != tt.want {
			t.Errorf("CipherSuite(%d).String(): got %q, want %q", tt.suite, got, tt.want)
		}
	}
}
