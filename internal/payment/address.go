package payment

import (
	"context"
	"fmt"

	"github.com/xsnexplorer/xsn-trezor/internal/signer"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// NewAddress derives the next address of type t on the device, shows it to
// the user and records it in the address book.
func (s *Service) NewAddress(ctx context.Context, t types.AddressType) (wallet.DeviceAddress, error) {
	entries, err := s.book.List()
	if err != nil {
		return wallet.DeviceAddress{}, fmt.Errorf("address book: %w", err)
	}
	serialized, err := wallet.PathFor(t, wallet.NextIndex(entries, t))
	if err != nil {
		return wallet.DeviceAddress{}, err
	}
	path, err := wallet.ParsePath(serialized)
	if err != nil {
		return wallet.DeviceAddress{}, err
	}

	addr, err := s.signer.GetAddress(ctx, path, true)
	if err != nil {
		return wallet.DeviceAddress{}, fmt.Errorf("get address: %w", err)
	}
	if got, err := types.ClassifyAddress(addr); err != nil || got != t {
		return wallet.DeviceAddress{}, fmt.Errorf("%w: device returned %q for a %s path", ErrAddressMismatch, addr, t)
	}

	d := wallet.DeviceAddress{Address: addr, Path: path, SerializedPath: serialized}
	if err := s.book.Add(d); err != nil {
		return wallet.DeviceAddress{}, err
	}
	s.logger.Info().Str("address", addr).Str("path", serialized).Msg("Address added")
	return d, nil
}

// VerifyAddress shows a book address on the device and checks that the
// device derives the same address from the recorded path.
func (s *Service) VerifyAddress(ctx context.Context, address string) (wallet.DeviceAddress, error) {
	d, err := s.book.Find(address)
	if err != nil {
		return wallet.DeviceAddress{}, err
	}
	got, err := s.signer.GetAddress(ctx, d.Path, true)
	if err != nil {
		return wallet.DeviceAddress{}, fmt.Errorf("get address: %w", err)
	}
	if got != d.Address {
		return wallet.DeviceAddress{}, fmt.Errorf("%w: book has %s at %s, device derived %s",
			ErrAddressMismatch, d.Address, d.SerializedPath, got)
	}
	return d, nil
}

// SignMessage signs message with the key of a book address.
func (s *Service) SignMessage(ctx context.Context, address, message string) (*signer.MessageSignature, error) {
	d, err := s.book.Find(address)
	if err != nil {
		return nil, err
	}
	sig, err := s.signer.SignMessage(ctx, d.Path, message)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	return sig, nil
}

// Reset forgets every address of the device.
func (s *Service) Reset() error {
	if err := s.book.Clear(); err != nil {
		return err
	}
	s.logger.Info().Msg("Address book cleared")
	return nil
}
