package encstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
)

// testKey returns a fixed key so failures reproduce
func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

// patternData returns n bytes of a deterministic, non-repeating-ish
// pattern, so misplaced blocks show up as mismatches
func patternData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i>>13 + 13)
	}
	return data
}

// encryptAll produces the full ciphertext stream for the given
// plaintext in a single pass
func encryptAll(t *testing.T, key, plaintext []byte) []byte {
	t.Helper()

	r, err := NewEncryptingReader(bytes.NewReader(plaintext), key)
	if err != nil {
		t.Fatalf("NewEncryptingReader failed: %v", err)
	}
	defer r.Close()

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading ciphertext failed: %v", err)
	}

	if int64(len(ciphertext)) != r.OutputSize() {
		t.Fatalf("ciphertext length mismatch: got %d, want %d", len(ciphertext), r.OutputSize())
	}

	return ciphertext
}

// newTestSink creates a fresh memfs-backed sink file
func newTestSink(t *testing.T) absfs.File {
	t.Helper()

	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("failed to create memfs: %v", err)
	}

	f, err := fs.Create("/plain.out")
	if err != nil {
		t.Fatalf("failed to create sink file: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	return f
}

// sinkContents reads back everything written to a sink file
func sinkContents(t *testing.T, f absfs.File) []byte {
	t.Helper()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek on sink failed: %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("reading sink failed: %v", err)
	}
	return data
}

// sinkSize reports the sink file's current length
func sinkSize(t *testing.T, f absfs.File) int64 {
	t.Helper()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		t.Fatalf("seek on sink failed: %v", err)
	}
	return size
}
