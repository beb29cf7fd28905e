// Package payment drives a payment end to end: it fetches the wallet's
// UTXOs and TPoS contracts from the explorer, builds the signing request,
// hands it to the signing device and broadcasts the result.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xsnexplorer/xsn-trezor/internal/explorer"
	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
	"github.com/xsnexplorer/xsn-trezor/internal/signer"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// DefaultConcurrency bounds parallel explorer requests.
const DefaultConcurrency = 8

// ErrAddressMismatch is returned when the device derives a different
// address than the one recorded in the address book.
var ErrAddressMismatch = errors.New("device address mismatch")

// Explorer is the subset of the explorer client the service needs.
type Explorer interface {
	GetBalance(ctx context.Context, address string) (*explorer.Balance, error)
	GetUTXOs(ctx context.Context, address string) ([]types.UTXO, error)
	GetTPoSContracts(ctx context.Context, address string) ([]types.TPoSContract, error)
	GetReferenceTransaction(ctx context.Context, txid string) (*tx.ReferenceTransaction, error)
	PushTransaction(ctx context.Context, hexTx string) (string, error)
}

// Service is the wallet front end for one device.
type Service struct {
	explorer    Explorer
	signer      signer.Signer
	book        wallet.AddressBook
	concurrency int
	logger      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the maximum number of parallel explorer requests.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a payment service.
func New(ex Explorer, sg signer.Signer, book wallet.AddressBook, opts ...Option) *Service {
	s := &Service{
		explorer:    ex,
		signer:      sg,
		book:        book,
		concurrency: DefaultConcurrency,
		logger:      klog.Payment,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Book returns the service's address book.
func (s *Service) Book() wallet.AddressBook {
	return s.book
}

// fetchAll calls fn for every key concurrently and returns the results in
// key order. The first error cancels the remaining calls.
func fetchAll[T any](ctx context.Context, limit int, keys []string, fn func(context.Context, string) (T, error)) ([]T, error) {
	out := make([]T, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, key := range keys {
		g.Go(func() error {
			v, err := fn(gctx, key)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) addresses() ([]string, error) {
	entries, err := s.book.List()
	if err != nil {
		return nil, fmt.Errorf("address book: %w", err)
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Address
	}
	return out, nil
}
