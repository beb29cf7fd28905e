package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tyler-smith/go-bip32"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// HDKey is a BIP-32 extended key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DerivePath derives a key along a sequence of indices. Hardened indices
// already include bip32.FirstHardenedChild.
func (k *HDKey) DerivePath(path []uint32) (*HDKey, error) {
	current := k.key
	for _, idx := range path {
		child, err := current.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		current = child
	}
	return &HDKey{key: current}, nil
}

// PrivateKey returns the secp256k1 private key. Returns an error for a
// public-only key.
func (k *HDKey) PrivateKey() (*btcec.PrivateKey, error) {
	if !k.key.IsPrivate {
		return nil, fmt.Errorf("public-only key")
	}
	raw := k.key.Key
	// bip32 stores private keys with a leading zero byte.
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// Address returns the address of type t for this key.
func (k *HDKey) Address(t types.AddressType, params *chaincfg.Params) (btcutil.Address, error) {
	return PubKeyAddress(k.PublicKeyBytes(), t, params)
}

// PubKeyAddress encodes a compressed public key as an address of type t.
func PubKeyAddress(pubKey []byte, t types.AddressType, params *chaincfg.Params) (btcutil.Address, error) {
	hash := btcutil.Hash160(pubKey)
	switch t {
	case types.Legacy:
		return btcutil.NewAddressPubKeyHash(hash, params)
	case types.Segwit:
		return btcutil.NewAddressWitnessPubKeyHash(hash, params)
	case types.P2SHSegwit:
		program, err := witnessProgram(hash, params)
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHash(program, params)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownAddressType, string(t))
	}
}

// witnessProgram returns the P2WPKH script OP_0 <hash>.
func witnessProgram(hash []byte, params *chaincfg.Params) ([]byte, error) {
	p2wkh, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(p2wkh)
}
