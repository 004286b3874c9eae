// Package encstream provides a transparent, seekable, tamper-evident
// encryption layer over byte streams of known length, built on modern
// authenticated-encryption primitives.
//
// # Overview
//
// encstream splits a finite, seekable plaintext source into fixed-size
// blocks of one MiB, encrypts each block independently with a unique
// per-block nonce, and exposes the result as an ordinary byte stream.
// The two halves of the package are independent and share only the wire
// format:
//
//   - EncryptingReader wraps an io.ReadSeeker and produces the ciphertext
//     stream on demand, supporting arbitrary-length reads and random
//     seeks in ciphertext coordinates. A seek costs one block
//     re-encryption, never a scan from the start.
//   - DecryptingWriter consumes ciphertext in arbitrary-sized chunks,
//     reassembles block boundaries, verifies every block, and writes the
//     recovered plaintext to a sink. Tampering, truncation, and block
//     reordering are all detected and cause the sink to be rolled back,
//     so unverified plaintext is never left visible.
//
// # Supported Cipher Suites
//
//   - XSalsa20-Poly1305 (NaCl secretbox): the default, compatible with
//     streams produced by PyNaCl-based implementations
//   - XChaCha20-Poly1305: the extended-nonce ChaCha20-Poly1305 variant
//
// Both use 24-byte nonces and 128-bit authentication tags. The stream
// header does not record the cipher suite; the encrypting and decrypting
// sides must agree on it out of band.
//
// # Basic Usage
//
//	key, _ := encstream.GenerateKey()
//
//	// Encrypt: wrap any io.ReadSeeker
//	r, err := encstream.NewEncryptingReader(plaintextFile, key)
//	if err != nil {
//	    panic(err)
//	}
//	io.Copy(ciphertextFile, r)
//
//	// Decrypt: feed ciphertext chunks of any size
//	w, err := encstream.NewDecryptingWriter(plaintextOut, key)
//	if err != nil {
//	    panic(err)
//	}
//	io.Copy(w, ciphertextFile)
//	if err := w.EndStream(); err != nil {
//	    panic(err) // stream incomplete or tampered with
//	}
//
// # Wire Format
//
// Encrypted streams use the following layout:
//   - Version major (2 bytes, little-endian): currently 1
//   - Version minor (2 bytes, little-endian): currently 0
//   - File nonce (20 bytes): random per-stream nonce prefix
//   - Ciphertext blocks: each BlockSize+TagSize bytes, except the last,
//     which is (remainder)+TagSize bytes
//
// Each block's 24-byte nonce is the file nonce followed by a 4-byte
// little-endian counter holding the one-based block index, with the
// most significant bit set only on the final block. Binding "last-ness"
// into the nonce is what lets the decrypting side detect truncation and
// reordering without a separate length channel.
//
// # Security Considerations
//
// Protected against:
//   - Tampering: any modified block fails authentication
//   - Reordering: a block's nonce is tied to its position in the stream
//   - Truncation: EndStream fails unless the final-block flag verified
//
// Not protected against:
//   - Key compromise or key reuse with a colliding file nonce
//   - Metadata leakage (plaintext length is computable from ciphertext
//     length, and vice versa)
//   - Memory disclosure while blocks are decrypted in memory
//
// # Limits
//
// A stream holds at most 2^31-1 blocks (about 2 PiB); exceeding that is
// reported as ErrStreamTooLarge. Zero-length sources are rejected, so
// callers must special-case empty inputs.
package encstream
