package payment

import (
	"context"

	"github.com/xsnexplorer/xsn-trezor/internal/explorer"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// Funds is a snapshot of the wallet's outputs.
type Funds struct {
	UTXOs     []types.UTXO
	Contracts []types.TPoSContract
}

// Spendable returns the UTXOs that are not TPoS collateral.
func (f *Funds) Spendable() []types.UTXO {
	return wallet.SpendableUTXOs(f.UTXOs, f.Contracts)
}

// Locked returns the UTXOs that are TPoS collateral.
func (f *Funds) Locked() []types.UTXO {
	free := make(map[types.Outpoint]struct{})
	for _, u := range f.Spendable() {
		free[u.Outpoint()] = struct{}{}
	}
	var out []types.UTXO
	for _, u := range f.UTXOs {
		if _, ok := free[u.Outpoint()]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// Contract returns the TPoS contract whose collateral is op.
func (f *Funds) Contract(op types.Outpoint) (types.TPoSContract, bool) {
	for _, c := range f.Contracts {
		if c.Collateral() == op {
			return c, true
		}
	}
	return types.TPoSContract{}, false
}

// ContractStates counts the active and closed contracts. Collateral of
// either kind is kept out of coin selection.
func (f *Funds) ContractStates() (active, closed int) {
	for _, c := range f.Contracts {
		switch {
		case c.Active():
			active++
		case c.Closed():
			closed++
		}
	}
	return active, closed
}

// Funds fetches the UTXOs and TPoS contracts of every address in the book.
// UTXOs keep address-book order, then explorer order within an address.
func (s *Service) Funds(ctx context.Context) (*Funds, error) {
	addrs, err := s.addresses()
	if err != nil {
		return nil, err
	}

	per, err := fetchAll(ctx, s.concurrency, addrs, func(ctx context.Context, addr string) (Funds, error) {
		utxos, err := s.explorer.GetUTXOs(ctx, addr)
		if err != nil {
			return Funds{}, err
		}
		contracts, err := s.explorer.GetTPoSContracts(ctx, addr)
		if err != nil {
			return Funds{}, err
		}
		return Funds{UTXOs: utxos, Contracts: contracts}, nil
	})
	if err != nil {
		return nil, err
	}

	f := &Funds{}
	for _, p := range per {
		f.UTXOs = append(f.UTXOs, p.UTXOs...)
		f.Contracts = append(f.Contracts, p.Contracts...)
	}
	s.logger.Debug().
		Int("addresses", len(addrs)).
		Int("utxos", len(f.UTXOs)).
		Int("contracts", len(f.Contracts)).
		Msg("Funds fetched")
	return f, nil
}

// AddressBalance is the balance of one book address.
type AddressBalance struct {
	Address string
	Balance *explorer.Balance
}

// Balances returns the balance of every address in the book and the total
// available amount.
func (s *Service) Balances(ctx context.Context) ([]AddressBalance, types.Satoshis, error) {
	addrs, err := s.addresses()
	if err != nil {
		return nil, 0, err
	}
	bals, err := fetchAll(ctx, s.concurrency, addrs, s.explorer.GetBalance)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AddressBalance, len(addrs))
	var total types.Satoshis
	for i, b := range bals {
		out[i] = AddressBalance{Address: addrs[i], Balance: b}
		total += b.Available
	}
	return out, total, nil
}
