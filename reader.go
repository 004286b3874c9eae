package encstream

import (
	"fmt"
	"io"
)

// EncryptingReader provides a transparently encrypted view over a
// seekable plaintext source. Reads return the ciphertext stream (header
// followed by encrypted blocks); Seek and Tell operate in ciphertext
// coordinates.
//
// The reader expects exclusive access to the source stream for its
// entire lifetime. Seeking the source while the reader is active will
// break things in interesting and hard to detect ways; detecting that
// would cost overhead on every call, so it is not attempted.
type EncryptingReader struct {
	source io.ReadSeeker
	engine CipherEngine
	header *StreamHeader

	sourceSize int64
	sourcePos  int64 // mirror of the source cursor; block-aligned between blocks
	outputSize int64

	// ciphertext produced but not yet consumed by Read. Before the first
	// data block this holds the pending suffix of the stream header.
	remaining []byte

	closed bool
}

var _ io.ReadSeekCloser = (*EncryptingReader)(nil)

// NewEncryptingReader creates a reader over the given plaintext source
// using the default cipher suite. The source must have nonzero length;
// its length is determined by seeking to the end and back.
func NewEncryptingReader(source io.ReadSeeker, key []byte) (*EncryptingReader, error) {
	return NewEncryptingReaderSuite(source, key, CipherAuto)
}

// NewEncryptingReaderSuite creates a reader using the given cipher suite
func NewEncryptingReaderSuite(source io.ReadSeeker, key []byte, suite CipherSuite) (*EncryptingReader, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}

	engine, err := NewCipherEngine(suite, key)
	if err != nil {
		return nil, err
	}

	size, err := source.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, NewIOError("seek", err)
	}
	if size == 0 {
		return nil, ErrZeroLengthSource
	}
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return nil, NewIOError("seek", err)
	}

	header, err := NewStreamHeader()
	if err != nil {
		return nil, err
	}

	return &EncryptingReader{
		source:     source,
		engine:     engine,
		header:     header,
		sourceSize: size,
		outputSize: EncryptedSize(size),
		remaining:  header.Encode(),
	}, nil
}

// OutputSize returns the total size of the ciphertext stream, header
// included. It is available immediately after construction so callers
// can pre-allocate buffers or compute ranges without reading.
func (r *EncryptingReader) OutputSize() int64 {
	return r.outputSize
}

func (r *EncryptingReader) atSourceEnd() bool {
	return r.sourcePos == r.sourceSize
}

// nextBlock reads, encrypts, and returns one block starting at the
// current source position. It returns nil at the end of the source.
//
// Block indices are zero-based internally; the nonce counter on the
// wire is one-based (see StreamHeader.blockNonce).
func (r *EncryptingReader) nextBlock() ([]byte, error) {
	if r.atSourceEnd() {
		return nil, nil
	}

	// new blocks always begin on a block boundary
	if r.sourcePos%BlockSize != 0 {
		return nil, fmt.Errorf("internal error: source cursor %d is not block-aligned", r.sourcePos)
	}
	blockIndex := r.sourcePos / BlockSize

	// only the last block may be smaller than BlockSize
	n := r.sourceSize - r.sourcePos
	if n > BlockSize {
		n = BlockSize
	}
	plaintext := make([]byte, n)
	if _, err := io.ReadFull(r.source, plaintext); err != nil {
		return nil, &IOError{Operation: "read", Offset: r.sourcePos, Err: err}
	}
	r.sourcePos += n

	nonce, err := r.header.blockNonce(blockIndex, r.atSourceEnd())
	if err != nil {
		return nil, err
	}

	return r.engine.Encrypt(nonce[:], plaintext)
}

// Read fills p with the next bytes of the ciphertext stream. It serves
// any leftover bytes of a partially consumed block first, then encrypts
// further blocks as needed. At the end of the stream it returns io.EOF.
func (r *EncryptingReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := copy(p, r.remaining)
	r.remaining = r.remaining[n:]

	for n < len(p) && !r.atSourceEnd() {
		block, err := r.nextBlock()
		if err != nil {
			return n, err
		}
		c := copy(p[n:], block)
		n += c
		if c < len(block) {
			r.remaining = block[c:]
		}
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Seek repositions the reader within the ciphertext stream. The target
// position is clamped to [0, OutputSize]. Seeking into a data block
// costs exactly one block re-encryption.
func (r *EncryptingReader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = r.tell()
	case io.SeekEnd:
		base = r.outputSize
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	position := base + offset
	if position < 0 {
		position = 0
	}
	if position > r.outputSize {
		position = r.outputSize
	}

	if position <= HeaderSize {
		// still in the header (or at the very start of the first block),
		// so the source belongs at position 0
		if err := r.seekSource(0); err != nil {
			return 0, err
		}
		r.remaining = r.header.Encode()[position:]
		return position, nil
	}

	// shift so the first block starts at 0; position >= 1 here because
	// the branch above took position <= HeaderSize
	body := position - HeaderSize

	blockIndex := blockIndexForOutput(body)
	intra := body - blockIndex*OutputBlockSize

	if err := r.seekSource(blockIndex * BlockSize); err != nil {
		return 0, err
	}
	block, err := r.nextBlock()
	if err != nil {
		return 0, err
	}
	r.remaining = block[intra:]

	return position, nil
}

func (r *EncryptingReader) seekSource(pos int64) error {
	if _, err := r.source.Seek(pos, io.SeekStart); err != nil {
		return &IOError{Operation: "seek", Offset: pos, Err: err}
	}
	r.sourcePos = pos
	return nil
}

// Tell returns the current position in the ciphertext stream. It always
// matches the position a fresh Seek to the same value would establish.
func (r *EncryptingReader) Tell() (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	return r.tell(), nil
}

func (r *EncryptingReader) tell() int64 {
	var blockIndex, blockSize int64
	switch {
	case r.sourcePos == 0:
		// still in the header
		return int64(HeaderSize) - int64(len(r.remaining))

	case r.atSourceEnd():
		// round down to the start of the last block; subtracting one
		// first keeps an exactly-full last block from rounding past it
		blockIndex = (r.sourceSize - 1) / BlockSize
		blockSize = r.sourceSize - blockIndex*BlockSize

	default:
		// the source cursor sits at the start of the next block, but the
		// leftover bytes are from the previous one
		blockIndex = r.sourcePos/BlockSize - 1
		blockSize = BlockSize
	}

	outputBlockSize := blockSize + TagSize
	consumed := outputBlockSize - int64(len(r.remaining))
	return HeaderSize + blockIndex*OutputBlockSize + consumed
}

// Close releases the reader. It does not close the underlying source.
// Close is idempotent; all other operations fail with ErrClosed
// afterwards.
func (r *EncryptingReader) Close() error {
	r.closed = true
	r.remaining = nil
	return nil
}
