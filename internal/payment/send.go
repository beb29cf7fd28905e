package payment

import (
	"context"
	"fmt"

	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
	"github.com/xsnexplorer/xsn-trezor/internal/signer"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
)

// Draft is a payment ready to be signed.
type Draft struct {
	Payment *wallet.Payment
	RefTxs  []*tx.ReferenceTransaction
}

// Request returns the signing request for the draft.
func (d *Draft) Request() signer.SignRequest {
	return signer.SignRequest{
		Coin:    signer.CoinName,
		Inputs:  d.Payment.Inputs,
		Outputs: d.Payment.Outputs,
		RefTxs:  d.RefTxs,
	}
}

// Receipt describes a broadcast payment.
type Receipt struct {
	TxID       string
	Serialized string
	Payment    *wallet.Payment
}

// Prepare selects UTXOs for amount+fee and fetches the reference
// transactions of the selected inputs. Amounts are decimal XSN strings.
// wallet.ErrInsufficientFunds is returned before any reference transaction
// is fetched.
func (s *Service) Prepare(ctx context.Context, destination, amount, fee string) (*Draft, error) {
	defer klog.Benchmark("prepare payment")()

	funds, err := s.Funds(ctx)
	if err != nil {
		return nil, err
	}

	p, err := wallet.BuildPayment(wallet.PaymentRequest{
		Destination: destination,
		Amount:      amount,
		Fee:         fee,
		UTXOs:       funds.UTXOs,
		Contracts:   funds.Contracts,
		Book:        s.book,
	})
	if err != nil {
		return nil, err
	}

	refs, err := fetchAll(ctx, s.concurrency, p.RefTxIDs, s.explorer.GetReferenceTransaction)
	if err != nil {
		return nil, fmt.Errorf("reference transactions: %w", err)
	}

	s.logger.Info().
		Str("to", destination).
		Stringer("amount", p.Amount).
		Stringer("fee", p.Fee).
		Stringer("change", p.Change).
		Int("inputs", len(p.Inputs)).
		Msg("Payment prepared")
	return &Draft{Payment: p, RefTxs: refs}, nil
}

// Sign asks the device to sign the draft.
func (s *Service) Sign(ctx context.Context, d *Draft) (*signer.SignResult, error) {
	res, err := s.signer.SignTransaction(ctx, d.Request())
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return res, nil
}

// Broadcast pushes a signed transaction to the explorer.
func (s *Service) Broadcast(ctx context.Context, res *signer.SignResult) (string, error) {
	txid, err := s.explorer.PushTransaction(ctx, res.Serialized)
	if err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}
	if res.TxID != "" && txid != res.TxID {
		s.logger.Warn().Str("signed", res.TxID).Str("explorer", txid).Msg("Explorer reported a different txid")
	}
	s.logger.Info().Str("txid", txid).Msg("Transaction broadcast")
	return txid, nil
}

// Send pays amount to destination, leaving fee to the network, and
// broadcasts the signed transaction. The signer and the explorer are each
// called once; nothing is retried.
func (s *Service) Send(ctx context.Context, destination, amount, fee string) (*Receipt, error) {
	d, err := s.Prepare(ctx, destination, amount, fee)
	if err != nil {
		return nil, err
	}
	res, err := s.Sign(ctx, d)
	if err != nil {
		return nil, err
	}
	txid, err := s.Broadcast(ctx, res)
	if err != nil {
		return nil, err
	}
	return &Receipt{TxID: txid, Serialized: res.Serialized, Payment: d.Payment}, nil
}
