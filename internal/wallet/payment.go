package wallet

import (
	"fmt"
	"math"

	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// PaymentRequest describes a simple payment. Amount and Fee are decimal XSN
// strings; UTXOs and Contracts are the caller's current snapshot.
type PaymentRequest struct {
	Destination string
	Amount      string
	Fee         string
	UTXOs       []types.UTXO
	Contracts   []types.TPoSContract
	Book        AddressLookup
}

// Payment holds everything a signing device needs except the reference
// transactions, which the caller fetches for RefTxIDs.
type Payment struct {
	Inputs        []tx.Input
	Outputs       []tx.Output
	Selection     Selection
	Amount        types.Satoshis
	Fee           types.Satoshis
	Change        types.Satoshis
	ChangeAddress string   // empty when there is no change output
	RefTxIDs      []string // distinct previous txids, first appearance order
}

// BuildPayment selects UTXOs for amount+fee and assembles the signing
// inputs and outputs.
//
// The first output pays Amount to Destination. When the selection exceeds
// the target a second output returns the difference to the address of the
// last selected UTXO. The fee is whatever the outputs leave unclaimed.
func BuildPayment(req PaymentRequest) (*Payment, error) {
	amount, err := types.ToSatoshis(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	fee, err := types.ToSatoshis(req.Fee)
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}
	// Validate the destination before touching the UTXOs.
	payTo, err := tx.NewOutput(req.Destination, amount)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	if amount > math.MaxInt64-fee {
		return nil, fmt.Errorf("%w: amount %s plus fee %s out of range", types.ErrInvalidAmount, amount, fee)
	}
	target := amount + fee
	sel := SelectUTXOs(req.UTXOs, target, req.Contracts)
	if sel.Insufficient() {
		return nil, fmt.Errorf("%w: need %s XSN, %s XSN spendable", ErrInsufficientFunds,
			target, types.SumSatoshis(SpendableUTXOs(req.UTXOs, req.Contracts)))
	}

	p := &Payment{
		Outputs:   []tx.Output{payTo},
		Selection: sel,
		Amount:    amount,
		Fee:       fee,
		Change:    sel.Change(target),
	}

	if p.Change > 0 {
		last, _ := sel.Last()
		change, err := tx.NewOutput(last.Address, p.Change)
		if err != nil {
			return nil, fmt.Errorf("change: %w", err)
		}
		p.Outputs = append(p.Outputs, change)
		p.ChangeAddress = last.Address
	}

	if req.Book == nil {
		return nil, fmt.Errorf("%w: no address book", ErrAddressNotFound)
	}
	seen := make(map[string]struct{}, len(sel.UTXOs))
	for _, u := range sel.UTXOs {
		d, err := req.Book.Find(u.Address)
		if err != nil {
			return nil, err
		}
		in, err := tx.NewInput(u, d.Path)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", u.Outpoint(), err)
		}
		p.Inputs = append(p.Inputs, in)

		if _, ok := seen[u.TxID]; !ok {
			seen[u.TxID] = struct{}{}
			p.RefTxIDs = append(p.RefTxIDs, u.TxID)
		}
	}
	return p, nil
}
