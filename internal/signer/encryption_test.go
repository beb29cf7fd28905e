package signer

import (
	"bytes"
	"errors"
	"testing"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() KDFParams {
	return KDFParams{Memory: 64, Iterations: 1, Parallelism: 1}
}

func TestSealOpenSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{0xab}, SeedSize)
	sealed, err := SealSeed(seed, []byte("pw"), fastParams())
	if err != nil {
		t.Fatalf("SealSeed() error: %v", err)
	}
	if bytes.Contains(sealed, seed[:16]) {
		t.Error("sealed output contains plaintext")
	}

	got, err := OpenSeed(sealed, []byte("pw"))
	if err != nil {
		t.Fatalf("OpenSeed() error: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Errorf("OpenSeed() = %x, want %x", got, seed)
	}
}

func TestOpenSeed_WrongPassword(t *testing.T) {
	sealed, _ := SealSeed([]byte("seed"), []byte("right"), fastParams())
	if _, err := OpenSeed(sealed, []byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("err = %v, want ErrWrongPassword", err)
	}
}

func TestOpenSeed_Tampered(t *testing.T) {
	sealed, _ := SealSeed([]byte("seed"), []byte("pw"), fastParams())

	body := append([]byte{}, sealed...)
	body[len(body)-1] ^= 1
	if _, err := OpenSeed(body, []byte("pw")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("tampered ciphertext err = %v", err)
	}

	// Header bytes are authenticated too.
	header := append([]byte{}, sealed...)
	header[0] ^= 1
	if _, err := OpenSeed(header, []byte("pw")); err == nil {
		t.Error("tampered salt should fail")
	}
}

func TestOpenSeed_TooShort(t *testing.T) {
	if _, err := OpenSeed(make([]byte, 10), []byte("pw")); err == nil {
		t.Error("short input should fail")
	}
}

func TestSealSeed_Randomized(t *testing.T) {
	a, _ := SealSeed([]byte("seed"), []byte("pw"), fastParams())
	b, _ := SealSeed([]byte("seed"), []byte("pw"), fastParams())
	if bytes.Equal(a, b) {
		t.Error("two seals of the same seed are identical")
	}
}
