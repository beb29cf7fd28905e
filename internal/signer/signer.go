// Package signer talks to the device that holds the keys: it derives
// addresses, signs transactions and signs messages.
package signer

import (
	"context"
	"errors"

	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
)

// CoinName is the coin identifier sent with every signing request.
const CoinName = "Stakenet"

// Signer errors.
var (
	ErrSignerFailed      = errors.New("signer failed")
	ErrUnsupportedScript = errors.New("unsupported script type")
)

// Signer is a hardware-wallet style signing device.
type Signer interface {
	// GetAddress derives the address at path. When showOnDevice is set the
	// device displays it for the user to compare.
	GetAddress(ctx context.Context, path []uint32, showOnDevice bool) (string, error)
	SignTransaction(ctx context.Context, req SignRequest) (*SignResult, error)
	SignMessage(ctx context.Context, path []uint32, message string) (*MessageSignature, error)
}

// SignRequest is a transaction signing request.
type SignRequest struct {
	Coin    string                     `json:"coin"`
	Inputs  []tx.Input                 `json:"inputs"`
	Outputs []tx.Output                `json:"outputs"`
	RefTxs  []*tx.ReferenceTransaction `json:"refTxs"`
}

// SignResult is a signed transaction.
type SignResult struct {
	Serialized string   `json:"serializedTx"` // hex
	Signatures []string `json:"signatures"`   // hex DER, one per input
	TxID       string   `json:"txid"`
}

// MessageSignature is a signed message. Signature is base64 of the 65-byte
// compact signature.
type MessageSignature struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}
