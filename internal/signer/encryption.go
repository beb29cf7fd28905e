package signer

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrWrongPassword is returned when a sealed seed cannot be opened.
var ErrWrongPassword = errors.New("wrong password or corrupted seed")

// Sealed layout: salt(32) | memory(4) | iterations(4) | parallelism(1) |
// nonce(24) | ciphertext.
const (
	saltSize   = 32
	headerSize = saltSize + 4 + 4 + 1
)

// KDFParams are the Argon2id cost parameters stored with a sealed seed.
type KDFParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultKDFParams returns the parameters used for new device files.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
	}
}

func (p KDFParams) key(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// SealSeed encrypts seed with password using Argon2id and
// XChaCha20-Poly1305.
func SealSeed(seed, password []byte, params KDFParams) ([]byte, error) {
	out := make([]byte, headerSize+chacha20poly1305.NonceSizeX, headerSize+chacha20poly1305.NonceSizeX+len(seed)+chacha20poly1305.Overhead)
	salt := out[:saltSize]
	nonce := out[headerSize:]
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	binary.LittleEndian.PutUint32(out[saltSize:], params.Memory)
	binary.LittleEndian.PutUint32(out[saltSize+4:], params.Iterations)
	out[saltSize+8] = params.Parallelism

	key := params.key(password, salt)
	defer wipe(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	// The header is bound as associated data so its parameters cannot be
	// swapped.
	return aead.Seal(out, nonce, seed, out[:headerSize]), nil
}

// OpenSeed decrypts a seed sealed by SealSeed.
func OpenSeed(sealed, password []byte) ([]byte, error) {
	minSize := headerSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
	if len(sealed) < minSize {
		return nil, fmt.Errorf("sealed seed too short: %d bytes, need at least %d", len(sealed), minSize)
	}

	params := KDFParams{
		Memory:      binary.LittleEndian.Uint32(sealed[saltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[saltSize+4:]),
		Parallelism: sealed[saltSize+8],
	}
	if params.Iterations == 0 || params.Parallelism == 0 {
		return nil, fmt.Errorf("invalid kdf parameters %+v", params)
	}
	nonce := sealed[headerSize : headerSize+chacha20poly1305.NonceSizeX]

	key := params.key(password, sealed[:saltSize])
	defer wipe(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	seed, err := aead.Open(nil, nonce, sealed[headerSize+len(nonce):], sealed[:headerSize])
	if err != nil {
		return nil, ErrWrongPassword
	}
	return seed, nil
}
