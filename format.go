package encstream

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// Wire format for encrypted streams
//
// Stream Layout:
// ┌─────────────────────────────────────┐
// │ Stream Header (24 bytes)            │
// │ - Version major (uint16 LE)         │
// │ - Version minor (uint16 LE)         │
// │ - File nonce (20 bytes, random)     │
// ├─────────────────────────────────────┤
// │ Block 0                             │
// │ └─ Ciphertext + Auth Tag            │ <- BlockSize + TagSize bytes
// ├─────────────────────────────────────┤
// │ Block 1                             │
// │ └─ ...                              │
// ├─────────────────────────────────────┤
// │ Final block                         │
// │ └─ Ciphertext + Auth Tag            │ <- remainder + TagSize bytes
// └─────────────────────────────────────┘
//
// Per-block nonce: file nonce (20 bytes) ++ counter (uint32 LE), where
// counter is the one-based block index and its most significant bit is
// set only on the final block of the stream.

const (
	// BlockSize is the plaintext block size (1 MiB)
	BlockSize = 1 << 20

	// TagSize is the authentication tag size appended to every block
	TagSize = 16

	// OutputBlockSize is the ciphertext size of a full block
	OutputBlockSize = BlockSize + TagSize

	// FileNonceSize is the size of the per-stream random nonce prefix
	FileNonceSize = 20

	// NonceSize is the full per-block nonce size (prefix + counter)
	NonceSize = FileNonceSize + 4

	// HeaderSize is the fixed size of the stream header
	HeaderSize = 4 + FileNonceSize

	// KeySize is the secret key size required by all cipher suites
	KeySize = 32

	// VersionMajor and VersionMinor identify the current wire format.
	// Both sides must agree exactly; there is no negotiation.
	VersionMajor = uint16(1)
	VersionMinor = uint16(0)

	// MaxBlockIndex is the largest addressable zero-based block index.
	// The nonce counter is the one-based index and must stay below 2^31
	// because its high bit carries the final-block flag.
	MaxBlockIndex = int64(1)<<31 - 2

	// finalBlockFlag marks the last block of a stream in the nonce counter
	finalBlockFlag = uint32(1) << 31
)

// StreamHeader is the fixed 24-byte header at the start of every
// encrypted stream
type StreamHeader struct {
	VersionMajor uint16
	VersionMinor uint16
	FileNonce    [FileNonceSize]byte
}

// NewStreamHeader creates a header for a new stream with a fresh random
// file nonce
func NewStreamHeader() (*StreamHeader, error) {
	h := &StreamHeader{
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
	}
	if _, err := rand.Read(h.FileNonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate file nonce: %w", err)
	}
	return h, nil
}

// Encode returns the header's 24-byte wire representation
func (h *StreamHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.VersionMajor)
	binary.LittleEndian.PutUint16(buf[2:4], h.VersionMinor)
	copy(buf[4:], h.FileNonce[:])
	return buf
}

// WriteTo writes the header to the given writer
func (h *StreamHeader) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Encode())
	if err != nil {
		return int64(n), fmt.Errorf("failed to write stream header: %w", err)
	}
	return int64(n), nil
}

// ReadFrom reads the header from the given reader
func (h *StreamHeader) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), fmt.Errorf("failed to read stream header: %w", err)
	}
	if err := h.decode(buf); err != nil {
		return int64(n), err
	}
	return int64(n), nil
}

// decode parses the header from exactly HeaderSize bytes
func (h *StreamHeader) decode(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrMalformedHeader
	}
	h.VersionMajor = binary.LittleEndian.Uint16(buf[0:2])
	h.VersionMinor = binary.LittleEndian.Uint16(buf[2:4])
	copy(h.FileNonce[:], buf[4:HeaderSize])
	return h.Validate()
}

// Validate checks that the header carries the supported version pair
func (h *StreamHeader) Validate() error {
	if h.VersionMajor != VersionMajor || h.VersionMinor != VersionMinor {
		return fmt.Errorf("%w: got version %d.%d, want %d.%d",
			ErrUnsupportedVersion, h.VersionMajor, h.VersionMinor, VersionMajor, VersionMinor)
	}
	return nil
}

// blockNonce builds the 24-byte nonce for the block with the given
// zero-based index. The counter on the wire is one-based; its high bit
// is set only when the block is the last one of the stream.
func (h *StreamHeader) blockNonce(blockIndex int64, final bool) ([NonceSize]byte, error) {
	var nonce [NonceSize]byte

	if blockIndex < 0 || blockIndex > MaxBlockIndex {
		return nonce, fmt.Errorf("%w: block index %d", ErrStreamTooLarge, blockIndex)
	}

	counter := uint32(blockIndex + 1)
	if final {
		counter |= finalBlockFlag
	}

	copy(nonce[:], h.FileNonce[:])
	binary.LittleEndian.PutUint32(nonce[FileNonceSize:], counter)
	return nonce, nil
}

// EncryptedSize returns the total ciphertext stream size (header
// included) for a plaintext source of the given size.
func EncryptedSize(plaintextSize int64) int64 {
	if plaintextSize <= 0 {
		return HeaderSize
	}

	numFullBlocks := plaintextSize / BlockSize
	remainder := plaintextSize - numFullBlocks*BlockSize

	size := int64(HeaderSize) + numFullBlocks*OutputBlockSize
	if remainder > 0 {
		// the trailing short block still carries a full tag
		size += remainder + TagSize
	}
	return size
}

// DecryptedSize returns the plaintext size recovered from a ciphertext
// stream of the given total size. It is the inverse of EncryptedSize and
// fails if no plaintext length maps to the given size.
func DecryptedSize(ciphertextSize int64) (int64, error) {
	body := ciphertextSize - HeaderSize
	if body <= TagSize {
		return 0, fmt.Errorf("ciphertext size %d too small for any valid stream", ciphertextSize)
	}

	numFullBlocks := body / OutputBlockSize
	remainder := body - numFullBlocks*OutputBlockSize

	plaintext := numFullBlocks * BlockSize
	if remainder > 0 {
		if remainder <= TagSize {
			return 0, fmt.Errorf("ciphertext size %d leaves a trailing block of %d bytes, below the %d-byte tag",
				ciphertextSize, remainder, TagSize)
		}
		plaintext += remainder - TagSize
	}
	return plaintext, nil
}

// blockIndexForOutput converts a position in the block region of the
// ciphertext stream (header already subtracted, position >= 1) to the
// index of the block that position falls in. Subtracting one before
// dividing makes exact block-boundary positions round down to the
// previous block: a boundary belongs to "end of block i", not "start of
// block i+1".
func blockIndexForOutput(position int64) int64 {
	return (position - 1) / OutputBlockSize
}
