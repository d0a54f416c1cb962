// Package cryptostream encrypts and decrypts byte streams with a password.
//
// Stream layout:
//
//	header: magic "FMC1" | version (1) | argon2 time (u32) | argon2 memory KiB (u32)
//	        | argon2 threads (u8) | salt (16) | base nonce (24)
//	chunks: final flag (1) | ciphertext length (u32) | XChaCha20-Poly1305 ciphertext
//
// Each chunk's nonce is the base nonce with the chunk counter XORed into its
// last 8 bytes, and the final flag is authenticated as additional data, so
// reordered, dropped or truncated chunks fail to decrypt.
package cryptostream

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Exported constants.
const (
	ChunkSize = 64 * 1024
	SaltSize  = 16

	DefaultTime      = 2
	DefaultMemoryKiB = 64 * 1024
	DefaultThreads   = 4

	// Header cost parameters above these are rejected before any key derivation.
	MaxTime      = 16
	MaxMemoryKiB = 1024 * 1024
	MaxThreads   = 64
)

// Exported errors.
var (
	ErrAuthentication = errors.New("authentication failed: wrong password or corrupted file")
	ErrNotEncrypted   = errors.New("not an encrypted file")
	ErrTruncated      = errors.New("encrypted file is truncated")
	ErrEmptyPassword  = errors.New("password must not be empty")
)

const (
	version    byte = 1
	lastChunk  byte = 1
	moreChunks byte = 0
	keySize         = chacha20poly1305.KeySize
	headerSize      = 4 + 1 + 4 + 4 + 1 + SaltSize + chacha20poly1305.NonceSizeX
	chunkHdr        = 1 + 4
)

//nolint:gochecknoglobals // fixed file signature
var magic = [4]byte{'F', 'M', 'C', '1'}

// Transform holds the argon2id cost parameters used when encrypting.
// Decryption reads the parameters from the stream header.
type Transform struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// New returns a Transform with the default cost parameters.
func New() *Transform {
	return &Transform{
		Time:      DefaultTime,
		MemoryKiB: DefaultMemoryKiB,
		Threads:   DefaultThreads,
	}
}

// Encrypt reads plaintext from src until EOF and writes the encrypted stream to dst.
func (t *Transform) Encrypt(dst io.Writer, src io.Reader, password []byte) error {
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	header := make([]byte, headerSize)
	copy(header, magic[:])
	header[4] = version
	binary.BigEndian.PutUint32(header[5:], t.Time)
	binary.BigEndian.PutUint32(header[9:], t.MemoryKiB)
	header[13] = t.Threads

	salt := header[14 : 14+SaltSize]
	nonce := header[14+SaltSize:]

	if _, err := rand.Read(header[14:]); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := newAEAD(password, salt, t.Time, t.MemoryKiB, t.Threads)
	if err != nil {
		return err
	}

	if _, err := dst.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	plain := make([]byte, ChunkSize)
	out := make([]byte, 0, chunkHdr+ChunkSize+aead.Overhead())

	for counter := uint64(0); ; counter++ {
		n, readErr := io.ReadFull(src, plain)

		flag := moreChunks
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			flag = lastChunk
		} else if readErr != nil {
			return fmt.Errorf("failed to read plaintext: %w", readErr)
		}

		out = out[:chunkHdr]
		out[0] = flag
		out = aead.Seal(out, chunkNonce(nonce, counter), plain[:n], []byte{flag})
		binary.BigEndian.PutUint32(out[1:], uint32(len(out)-chunkHdr)) //nolint:gosec // bounded by ChunkSize

		if _, err := dst.Write(out); err != nil {
			return fmt.Errorf("failed to write ciphertext: %w", err)
		}

		if flag == lastChunk {
			return nil
		}
	}
}

// Decrypt reads an encrypted stream from src and writes the plaintext to dst.
// Plaintext is written chunk by chunk as each chunk authenticates.
func (t *Transform) Decrypt(dst io.Writer, src io.Reader, password []byte) error {
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(src, header); err != nil {
		return fmt.Errorf("%w: header too short", ErrNotEncrypted)
	}

	if [4]byte(header[:4]) != magic || header[4] != version {
		return ErrNotEncrypted
	}

	time, memoryKiB, threads := binary.BigEndian.Uint32(header[5:]), binary.BigEndian.Uint32(header[9:]), header[13]
	if time > MaxTime || memoryKiB > MaxMemoryKiB || threads > MaxThreads {
		return fmt.Errorf("%w: key derivation cost out of range", ErrNotEncrypted)
	}

	aead, err := newAEAD(password, header[14:14+SaltSize], time, memoryKiB, threads)
	if err != nil {
		return err
	}

	nonce := header[14+SaltSize:]
	hdr := make([]byte, chunkHdr)
	sealed := make([]byte, ChunkSize+aead.Overhead())
	plain := make([]byte, 0, ChunkSize)

	for counter := uint64(0); ; counter++ {
		if _, err := io.ReadFull(src, hdr); err != nil {
			return ErrTruncated
		}

		flag := hdr[0]
		size := binary.BigEndian.Uint32(hdr[1:])

		if flag > lastChunk || int(size) > len(sealed) || int(size) < aead.Overhead() {
			return ErrAuthentication
		}

		if _, err := io.ReadFull(src, sealed[:size]); err != nil {
			return ErrTruncated
		}

		plain, err = aead.Open(plain[:0], chunkNonce(nonce, counter), sealed[:size], []byte{flag})
		if err != nil {
			return ErrAuthentication
		}

		if _, err := dst.Write(plain); err != nil {
			return fmt.Errorf("failed to write plaintext: %w", err)
		}

		if flag == lastChunk {
			break
		}
	}

	_, err = io.ReadFull(src, hdr[:1])

	switch {
	case err == nil:
		return fmt.Errorf("%w: data after the final chunk", ErrAuthentication)
	case errors.Is(err, io.EOF):
		return nil
	default:
		return fmt.Errorf("failed to read ciphertext: %w", err)
	}
}

func newAEAD(password, salt []byte, time, memoryKiB uint32, threads uint8) (cipher.AEAD, error) {
	if threads == 0 || time == 0 {
		return nil, ErrNotEncrypted
	}

	key := argon2.IDKey(password, salt, time, memoryKiB, threads, keySize)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return aead, nil
}

func chunkNonce(base []byte, counter uint64) []byte {
	nonce := make([]byte, len(base))
	copy(nonce, base)

	tail := nonce[len(nonce)-8:]
	binary.BigEndian.PutUint64(tail, binary.BigEndian.Uint64(tail)^counter)

	return nonce
}
