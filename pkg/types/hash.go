// Package types defines the primitive XSN types shared by the wallet,
// the explorer client and the signer.
package types

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the length of a transaction id in bytes.
const HashSize = 32

// ValidateTxID checks that s is a 64-character hex transaction id.
func ValidateTxID(s string) error {
	if len(s) != HashSize*2 {
		return fmt.Errorf("txid must be %d hex chars, got %d", HashSize*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("invalid txid hex: %w", err)
	}
	return nil
}
