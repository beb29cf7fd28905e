package signer

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"
	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
)

// Software is a Signer backed by a BIP-39 seed held in memory. It plays the
// role of the hardware device for development and tests.
type Software struct {
	master *HDKey
	params *chaincfg.Params
	logger zerolog.Logger
}

// NewSoftware creates a software signer from a 64-byte seed.
func NewSoftware(seed []byte, params *chaincfg.Params) (*Software, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return &Software{
		master: master,
		params: params,
		logger: klog.Signer,
	}, nil
}

// NewSoftwareFromMnemonic creates a software signer from a mnemonic.
func NewSoftwareFromMnemonic(mnemonic, passphrase string, params *chaincfg.Params) (*Software, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewSoftware(seed, params)
}

// GetAddress implements Signer. The address type follows the purpose of
// the path.
func (s *Software) GetAddress(ctx context.Context, path []uint32, showOnDevice bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	at, err := wallet.PathAddressType(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	key, err := s.master.DerivePath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	addr, err := key.Address(at, s.params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	if showOnDevice {
		s.logger.Info().
			Str("path", wallet.FormatPath(path)).
			Str("address", addr.EncodeAddress()).
			Msg("Address shown on device")
	}
	return addr.EncodeAddress(), nil
}

// SignTransaction implements Signer.
func (s *Software) SignTransaction(ctx context.Context, req SignRequest) (*SignResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Coin != "" && req.Coin != CoinName {
		return nil, fmt.Errorf("%w: unsupported coin %q", ErrSignerFailed, req.Coin)
	}
	res, err := signTransaction(s.master, s.params, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("txid", res.TxID).
		Int("inputs", len(req.Inputs)).
		Int("outputs", len(req.Outputs)).
		Msg("Transaction signed")
	return res, nil
}

// SignMessage implements Signer.
func (s *Software) SignMessage(ctx context.Context, path []uint32, message string) (*MessageSignature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	at, err := wallet.PathAddressType(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	key, err := s.master.DerivePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignerFailed, err)
	}
	return signMessage(key, at, s.params, message)
}
