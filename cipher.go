package encstream

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/secretbox"
)

// CipherEngine provides AEAD encryption/decryption for stream blocks
type CipherEngine interface {
	// Encrypt encrypts plaintext with the given nonce
	Encrypt(nonce, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext with the given nonce
	Decrypt(nonce, ciphertext []byte) ([]byte, error)

	// NonceSize returns the size of nonces in bytes
	NonceSize() int

	// Overhead returns the authentication tag size
	Overhead() int
}

// SecretboxEngine implements CipherEngine using NaCl secretbox
// (XSalsa20-Poly1305)
type SecretboxEngine struct {
	key [KeySize]byte
}

// NewSecretboxEngine creates a new XSalsa20-Poly1305 cipher engine
func NewSecretboxEngine(key []byte) (*SecretboxEngine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: secretbox requires a %d-byte key, got %d bytes",
			ErrInvalidKey, KeySize, len(key))
	}

	e := &SecretboxEngine{}
	copy(e.key[:], key)
	return e, nil
}

// Encrypt encrypts plaintext using XSalsa20-Poly1305
func (e *SecretboxEngine) Encrypt(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != e.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", e.NonceSize(), len(nonce))
	}

	var n [NonceSize]byte
	copy(n[:], nonce)
	return secretbox.Seal(nil, plaintext, &n, &e.key), nil
}

// Decrypt decrypts ciphertext using XSalsa20-Poly1305
func (e *SecretboxEngine) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != e.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", e.NonceSize(), len(nonce))
	}

	var n [NonceSize]byte
	copy(n[:], nonce)
	plaintext, ok := secretbox.Open(nil, ciphertext, &n, &e.key)
	if !ok {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// NonceSize returns the nonce size for XSalsa20-Poly1305 (24 bytes)
func (e *SecretboxEngine) NonceSize() int {
	return NonceSize
}

// Overhead returns the authentication tag size (16 bytes)
func (e *SecretboxEngine) Overhead() int {
	return secretbox.Overhead
}

// XChaCha20Poly1305Engine implements CipherEngine using
// XChaCha20-Poly1305
type XChaCha20Poly1305Engine struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305Engine creates a new XChaCha20-Poly1305 cipher
// engine
func NewXChaCha20Poly1305Engine(key []byte) (*XChaCha20Poly1305Engine, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: XChaCha20-Poly1305 requires a %d-byte key, got %d bytes",
			ErrInvalidKey, chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305 cipher: %w", err)
	}

	return &XChaCha20Poly1305Engine{aead: aead}, nil
}

// Encrypt encrypts plaintext using XChaCha20-Poly1305
func (e *XChaCha20Poly1305Engine) Encrypt(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != e.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", e.NonceSize(), len(nonce))
	}

	return e.aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext using XChaCha20-Poly1305
func (e *XChaCha20Poly1305Engine) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != e.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", e.NonceSize(), len(nonce))
	}

	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// NonceSize returns the nonce size for XChaCha20-Poly1305 (24 bytes)
func (e *XChaCha20Poly1305Engine) NonceSize() int {
	return e.aead.NonceSize()
}

// Overhead returns the authentication tag size (16 bytes)
func (e *XChaCha20Poly1305Engine) Overhead() int {
	return e.aead.Overhead()
}

// NewCipherEngine creates a new cipher engine based on the cipher suite
func NewCipherEngine(suite CipherSuite, key []byte) (CipherEngine, error) {
	switch suite {
	case CipherXSalsa20Poly1305:
		return NewSecretboxEngine(key)
	case CipherXChaCha20Poly1305:
		return NewXChaCha20Poly1305Engine(key)
	case CipherAuto:
		// secretbox is the wire-compatible default
		return NewSecretboxEngine(key)
	default:
		return nil, ErrUnsupportedCipher
	}
}
