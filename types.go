package encstream

// CipherSuite represents the AEAD algorithm used for stream blocks
type CipherSuite uint8

const (
	// CipherAuto selects the default suite (XSalsa20-Poly1305)
	CipherAuto CipherSuite = iota
	// CipherXSalsa20Poly1305 uses NaCl secretbox
	CipherXSalsa20Poly1305
	// CipherXChaCha20Poly1305 uses the extended-nonce ChaCha20-Poly1305
	CipherXChaCha20Poly1305
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAuto:
		return "auto"
	case CipherXSalsa20Poly1305:
		return "xsalsa20-poly1305"
	case CipherXChaCha20Poly1305:
		return "xchacha20-poly1305"
	default:
		return "unknown"
	}
}

// KeyProvider is an interface for supplying stream encryption keys
type KeyProvider interface {
	// ProvideKey returns a KeySize-byte secret key
	ProvideKey() ([]byte, error)
}
