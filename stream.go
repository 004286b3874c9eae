package encstream

import "io"

// One-shot helpers for callers that hold the entire stream on both ends
// and do not need random access.

// Encrypt encrypts the whole plaintext source into dst using the
// default cipher suite. It returns the number of ciphertext bytes
// written, which equals EncryptedSize of the source length on success.
func Encrypt(dst io.Writer, source io.ReadSeeker, key []byte) (int64, error) {
	return EncryptSuite(dst, source, key, CipherAuto)
}

// EncryptSuite encrypts the whole plaintext source into dst using the
// given cipher suite
func EncryptSuite(dst io.Writer, source io.ReadSeeker, key []byte, suite CipherSuite) (int64, error) {
	r, err := NewEncryptingReaderSuite(source, key, suite)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	return io.Copy(dst, r)
}

// Decrypt decrypts a complete ciphertext stream into sink using the
// default cipher suite, verifying every block and the stream's
// completeness. It returns the number of ciphertext bytes consumed.
func Decrypt(sink Sink, ciphertext io.Reader, key []byte) (int64, error) {
	return DecryptSuite(sink, ciphertext, key, CipherAuto)
}

// DecryptSuite decrypts a complete ciphertext stream into sink using
// the given cipher suite
func DecryptSuite(sink Sink, ciphertext io.Reader, key []byte, suite CipherSuite) (int64, error) {
	w, err := NewDecryptingWriterSuite(sink, key, suite)
	if err != nil {
		return 0, err
	}
	defer w.Close()

	n, err := io.Copy(w, ciphertext)
	if err != nil {
		return n, err
	}
	if err := w.EndStream(); err != nil {
		return n, err
	}
	return n, nil
}
