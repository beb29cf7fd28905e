package signer

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// MessageMagic prefixes every signed message.
const MessageMagic = "DarkCoin Signed Message:\n"

// Compact signature header bases, per address type. The recovery id is
// added to the base.
const (
	headerCompressed = 27 + 4
	headerP2SHSegwit = headerCompressed + 4
	headerSegwit     = headerCompressed + 8
)

// MessageHash returns the double SHA-256 of the varstr-encoded magic and
// message.
func MessageHash(message string) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = wire.WriteVarString(&buf, 0, MessageMagic)
	_ = wire.WriteVarString(&buf, 0, message)
	return chainhash.DoubleHashB(buf.Bytes())
}

func headerBase(t types.AddressType) (byte, error) {
	switch t {
	case types.Legacy:
		return headerCompressed, nil
	case types.P2SHSegwit:
		return headerP2SHSegwit, nil
	case types.Segwit:
		return headerSegwit, nil
	default:
		return 0, fmt.Errorf("%w: %q", types.ErrUnknownAddressType, string(t))
	}
}

func signMessage(key *HDKey, t types.AddressType, params *chaincfg.Params, message string) (*MessageSignature, error) {
	priv, err := key.PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	base, err := headerBase(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	addr, err := key.Address(t, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}

	sig := ecdsa.SignCompact(priv, MessageHash(message), true)
	sig[0] = base + (sig[0] - headerCompressed)

	return &MessageSignature{
		Address:   addr.EncodeAddress(),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// VerifyMessage checks a base64 compact signature of message against
// address.
func VerifyMessage(address, signature, message string, params *chaincfg.Params) error {
	if !ValidAddress(address, params) {
		return fmt.Errorf("invalid address %q", address)
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != 65 {
		return fmt.Errorf("malformed signature")
	}

	var t types.AddressType
	h := sig[0]
	switch {
	case h >= 27 && h < headerCompressed:
		return fmt.Errorf("uncompressed keys are not supported")
	case h >= headerCompressed && h < headerP2SHSegwit:
		t = types.Legacy
	case h >= headerP2SHSegwit && h < headerSegwit:
		t = types.P2SHSegwit
	case h >= headerSegwit && h < headerSegwit+4:
		t = types.Segwit
	default:
		return fmt.Errorf("invalid signature header %d", h)
	}
	base, _ := headerBase(t)

	normalized := append([]byte{headerCompressed + (h - base)}, sig[1:]...)
	pub, _, err := ecdsa.RecoverCompact(normalized, MessageHash(message))
	if err != nil {
		return fmt.Errorf("recover key: %w", err)
	}
	addr, err := PubKeyAddress(pub.SerializeCompressed(), t, params)
	if err != nil {
		return err
	}
	if addr.EncodeAddress() != address {
		return fmt.Errorf("signature is for %s, not %s", addr.EncodeAddress(), address)
	}
	return nil
}

// ValidAddress reports whether address is a well-formed address of the
// network described by params.
func ValidAddress(address string, params *chaincfg.Params) bool {
	addr, err := btcutil.DecodeAddress(address, params)
	return err == nil && addr.IsForNet(params)
}
