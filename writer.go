package encstream

import (
	"fmt"
	"io"

	"github.com/absfs/absfs"
)

// Sink is the destination a DecryptingWriter writes recovered plaintext
// into. It must support sequential appends, reporting its write position
// via Seek, and truncation (used only to roll back unverified output).
type Sink interface {
	io.Writer
	io.Seeker
	Truncate(size int64) error
}

// Any absfs file can serve as a plaintext sink.
var _ Sink = (absfs.File)(nil)

// streamState tracks the decoder through the life of one stream
type streamState uint8

const (
	// stateAwaitingHeader: accumulating bytes until the 24-byte header
	// can be parsed
	stateAwaitingHeader streamState = iota
	// stateStreaming: header parsed, decrypting full blocks as they
	// complete
	stateStreaming
	// stateComplete: a block verified under the final-block nonce;
	// terminal
	stateComplete
	// stateFailed: authentication failed and the sink was rolled back;
	// terminal
	stateFailed
)

// DecryptingWriter decrypts a ciphertext stream fed to it in chunks of
// arbitrary size and writes the verified plaintext to a sink. Chunk
// boundaries need not align with the header or with block boundaries.
//
// The stream carries no explicit length, so the writer cannot know which
// block is the last one ahead of time. Each full block is first tried
// under the regular nonce; if that fails it is retried under the
// final-block variant, whose success marks the stream complete. Callers
// must invoke EndStream once the whole ciphertext has been delivered;
// without it a truncated stream is indistinguishable from a valid prefix
// of a longer one.
//
// The writer expects exclusive access to the sink's write cursor for its
// entire lifetime.
type DecryptingWriter struct {
	sink   Sink
	engine CipherEngine
	header StreamHeader // valid once state leaves stateAwaitingHeader

	// accumulation buffer; holds less than one full output block after
	// every processing pass
	buf []byte

	state  streamState
	closed bool
}

var _ io.WriteCloser = (*DecryptingWriter)(nil)

// NewDecryptingWriter creates a writer that decrypts into the given sink
// using the default cipher suite
func NewDecryptingWriter(sink Sink, key []byte) (*DecryptingWriter, error) {
	return NewDecryptingWriterSuite(sink, key, CipherAuto)
}

// NewDecryptingWriterSuite creates a writer using the given cipher suite
func NewDecryptingWriterSuite(sink Sink, key []byte, suite CipherSuite) (*DecryptingWriter, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink cannot be nil")
	}

	engine, err := NewCipherEngine(suite, key)
	if err != nil {
		return nil, err
	}

	return &DecryptingWriter{
		sink:   sink,
		engine: engine,
		state:  stateAwaitingHeader,
	}, nil
}

// Complete reports whether the stream's final block has been verified
func (w *DecryptingWriter) Complete() bool {
	return w.state == stateComplete
}

// Write feeds the next chunk of ciphertext to the writer. Plaintext is
// committed to the sink one verified block at a time; bytes that do not
// yet form a full block stay buffered for the next call.
func (w *DecryptingWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}

	w.buf = append(w.buf, p...)

	if w.state == stateAwaitingHeader && len(w.buf) >= HeaderSize {
		if err := w.header.decode(w.buf[:HeaderSize]); err != nil {
			// nothing was written to the sink, so there is nothing to
			// roll back
			w.state = stateFailed
			w.closed = true
			return 0, err
		}
		w.buf = w.buf[HeaderSize:]
		w.state = stateStreaming
	}

	for w.state == stateStreaming && len(w.buf) >= OutputBlockSize {
		block := w.buf[:OutputBlockSize]
		w.buf = w.buf[OutputBlockSize:]

		if err := w.writeBlock(block, false); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// writeBlock decrypts one detached ciphertext block and commits the
// plaintext. The block's index, and therefore its expected nonce, is
// derived from the sink's write position: a block delivered out of order
// decrypts against the wrong nonce and fails authentication.
func (w *DecryptingWriter) writeBlock(block []byte, knownToBeLast bool) error {
	pos, err := w.sinkPosition()
	if err != nil {
		return err
	}
	if pos%BlockSize != 0 {
		return fmt.Errorf("internal error: sink position %d is not block-aligned", pos)
	}
	blockIndex := pos / BlockSize

	if !knownToBeLast {
		nonce, err := w.header.blockNonce(blockIndex, false)
		if err != nil {
			return err
		}
		plaintext, err := w.engine.Decrypt(nonce[:], block)
		if err == nil {
			return w.commit(plaintext)
		}
		// fall through and retry as the final block
	}

	nonce, err := w.header.blockNonce(blockIndex, true)
	if err != nil {
		return err
	}
	plaintext, err := w.engine.Decrypt(nonce[:], block)
	if err != nil {
		w.fail()
		return &AuthenticationError{BlockIndex: blockIndex, Err: ErrAuthFailed}
	}

	// the final block verified
	if err := w.commit(plaintext); err != nil {
		return err
	}
	w.state = stateComplete

	if len(w.buf) > 0 {
		// bytes after the cryptographically-final block mean the stream
		// was extended or spliced
		w.fail()
		return &AuthenticationError{BlockIndex: blockIndex, Err: ErrAuthFailed}
	}

	return w.Close()
}

func (w *DecryptingWriter) commit(plaintext []byte) error {
	if _, err := w.sink.Write(plaintext); err != nil {
		return NewIOError("write", err)
	}
	return nil
}

func (w *DecryptingWriter) sinkPosition() (int64, error) {
	pos, err := w.sink.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, NewIOError("seek", err)
	}
	return pos, nil
}

// fail rolls the sink back to zero length so partial, unverified
// plaintext is never left visible, and closes the writer.
func (w *DecryptingWriter) fail() {
	w.state = stateFailed
	if _, err := w.sink.Seek(0, io.SeekStart); err == nil {
		// rollback is best-effort; the error surfaced to the caller is
		// the one that got us here
		_ = w.sink.Truncate(0)
	}
	w.closed = true
}

// EndStream tells the writer the complete ciphertext has been delivered.
// Any buffered residue is decrypted as the known-final block. If the
// stream never reached the complete state the sink is rolled back and
// ErrIncompleteStream is returned. EndStream closes the writer.
func (w *DecryptingWriter) EndStream() error {
	if w.state == stateComplete {
		// the final block already arrived through Write
		return w.Close()
	}
	if w.closed {
		return ErrClosed
	}

	if w.state == stateStreaming && len(w.buf) > 0 {
		block := w.buf
		w.buf = nil
		if err := w.writeBlock(block, true); err != nil {
			return err
		}
		return w.Close()
	}

	// no residue and the final block never verified: the stream was cut
	// short (possibly on an exact block boundary)
	w.fail()
	return ErrIncompleteStream
}

// Flush flushes the sink, if it supports flushing
func (w *DecryptingWriter) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.syncSink()
}

func (w *DecryptingWriter) syncSink() error {
	type syncer interface {
		Sync() error
	}
	if s, ok := w.sink.(syncer); ok {
		if err := s.Sync(); err != nil {
			return NewIOError("sync", err)
		}
	}
	return nil
}

// Close flushes the sink and closes the writer. It does not close the
// sink itself; the sink's lifetime belongs to the caller. Close is
// idempotent.
func (w *DecryptingWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.syncSink()
}

// Tell returns the ciphertext-space offset consumed so far, including
// bytes that are buffered but not yet decrypted.
func (w *DecryptingWriter) Tell() (int64, error) {
	if w.closed {
		return 0, ErrClosed
	}

	if w.state == stateAwaitingHeader {
		return int64(len(w.buf)), nil
	}

	pos, err := w.sinkPosition()
	if err != nil {
		return 0, err
	}
	if pos%BlockSize != 0 {
		return 0, fmt.Errorf("internal error: sink position %d is not block-aligned", pos)
	}
	blockIndex := pos / BlockSize

	return HeaderSize + blockIndex*OutputBlockSize + int64(len(w.buf)), nil
}
