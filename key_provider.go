package encstream

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// GenerateKey returns a fresh random KeySize-byte key from a
// cryptographically secure source
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// GenerateSalt returns a new random salt of the given size
func GenerateSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// RandomKeyProvider supplies a fresh random key on every call
type RandomKeyProvider struct{}

// ProvideKey returns a new random KeySize-byte key
func (RandomKeyProvider) ProvideKey() ([]byte, error) {
	return GenerateKey()
}

// HashFunc represents hash function types for PBKDF2
type HashFunc uint8

const (
	// SHA256 hash function
	SHA256 HashFunc = iota
	// SHA512 hash function
	SHA512
)

// PBKDF2Params contains parameters for PBKDF2 key derivation
type PBKDF2Params struct {
	Iterations int      // Number of iterations (minimum 100,000 recommended)
	HashFunc   HashFunc // Hash function to use
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
}

// PasswordKeyProvider derives a stream key from a password and salt.
// Both ends of a stream must use the same password, salt, and
// parameters to arrive at the same key.
type PasswordKeyProvider struct {
	password     []byte
	salt         []byte
	useArgon2id  bool
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPasswordKeyProvider creates a password-based key provider using
// Argon2id (recommended)
func NewPasswordKeyProvider(password, salt []byte, params Argon2idParams) *PasswordKeyProvider {
	// Set defaults
	if params.Memory == 0 {
		params.Memory = 64 * 1024 // 64 MB
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}

	return &PasswordKeyProvider{
		password:     password,
		salt:         salt,
		useArgon2id:  true,
		argon2Params: params,
	}
}

// NewPasswordKeyProviderPBKDF2 creates a password-based key provider
// using PBKDF2
func NewPasswordKeyProviderPBKDF2(password, salt []byte, params PBKDF2Params) *PasswordKeyProvider {
	// Set defaults
	if params.Iterations == 0 {
		params.Iterations = 100000
	}

	return &PasswordKeyProvider{
		password:     password,
		salt:         salt,
		useArgon2id:  false,
		pbkdf2Params: params,
	}
}

// ProvideKey derives the KeySize-byte stream key from the password and
// salt. The derivation is deterministic for fixed inputs.
func (p *PasswordKeyProvider) ProvideKey() ([]byte, error) {
	if len(p.password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if len(p.salt) == 0 {
		return nil, errors.New("salt cannot be empty")
	}

	if p.useArgon2id {
		key := argon2.IDKey(
			p.password,
			p.salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			KeySize,
		)
		return key, nil
	}

	var hashFunc func() hash.Hash
	switch p.pbkdf2Params.HashFunc {
	case SHA256:
		hashFunc = sha256.New
	case SHA512:
		hashFunc = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash function: %v", p.pbkdf2Params.HashFunc)
	}

	key := pbkdf2.Key(
		p.password,
		p.salt,
		p.pbkdf2Params.Iterations,
		KeySize,
		hashFunc,
	)
	return key, nil
}
