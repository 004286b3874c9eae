package encstream

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrZeroLengthSource is returned when constructing an
	// EncryptingReader over an empty source
	ErrZeroLengthSource = errors.New("zero-length sources are unsupported")

	// ErrStreamTooLarge is returned when a block index exceeds the
	// nonce counter's addressable range
	ErrStreamTooLarge = errors.New("stream too large: maximum block index surpassed")

	// ErrMalformedHeader is returned when the stream header cannot be
	// parsed
	ErrMalformedHeader = errors.New("malformed stream header")

	// ErrUnsupportedVersion is returned when the header version fields
	// do not match the supported pair
	ErrUnsupportedVersion = errors.New("unsupported stream format version")

	// ErrAuthFailed is returned when a block fails verification under
	// both the non-final and final nonce variants - the data was
	// corrupted or tampered with
	ErrAuthFailed = errors.New("authentication failed - data may be corrupted or tampered")

	// ErrIncompleteStream is returned by EndStream when the final block
	// was never verified
	ErrIncompleteStream = errors.New("incomplete stream: final block never received")

	// ErrClosed is returned by operations on a closed reader or writer
	ErrClosed = errors.New("operation on closed stream")

	// ErrInvalidKey is returned when a key has the wrong length
	ErrInvalidKey = errors.New("invalid encryption key")

	// ErrUnsupportedCipher is returned for an unknown cipher suite
	ErrUnsupportedCipher = errors.New("unsupported cipher suite")
)

// AuthenticationError reports which block failed verification. It
// unwraps to ErrAuthFailed.
type AuthenticationError struct {
	BlockIndex int64 // Zero-based index of the offending block
	Err        error // Underlying error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("failed to decrypt block %d: %v"+
		" (the partially decrypted output has been discarded)", e.BlockIndex, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IOError represents a failure of the wrapped source or sink
type IOError struct {
	Operation string // "read", "write", "seek", "truncate", "sync"
	Offset    int64  // Stream offset, -1 if not applicable
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("io error: %s at offset %d: %v", e.Operation, e.Offset, e.Err)
	}
	return fmt.Sprintf("io error: %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new I/O error without offset information
func NewIOError(operation string, err error) error {
	return &IOError{
		Operation: operation,
		Offset:    -1,
		Err:       err,
	}
}

// IsAuthenticationError checks if an error is a block authentication
// failure
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsIOError checks if an error originated in the wrapped source or sink
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
