package wallet

import (
	"errors"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// Coin selection errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAddressNotFound   = errors.New("address not found")
)

// Selection holds the result of coin selection.
//
// Either Total >= target and UTXOs is non-empty, or Total is zero and UTXOs
// is empty. A partially funded selection is never returned.
type Selection struct {
	Total types.Satoshis // Sum of selected UTXO values.
	UTXOs []types.UTXO   // Selected UTXOs, in the order they were given.
}

// Insufficient reports whether the selection is the empty "not enough
// funds" result.
func (s Selection) Insufficient() bool {
	return len(s.UTXOs) == 0
}

// Change returns Total - target, or zero when nothing was selected.
func (s Selection) Change(target types.Satoshis) types.Satoshis {
	if s.Insufficient() || s.Total <= target {
		return 0
	}
	return s.Total - target
}

// Last returns the last selected UTXO. The payment flow sends change back
// to its address.
func (s Selection) Last() (types.UTXO, bool) {
	if len(s.UTXOs) == 0 {
		return types.UTXO{}, false
	}
	return s.UTXOs[len(s.UTXOs)-1], true
}

// SelectUTXOs picks enough UTXOs to cover target (fee already included).
//
// Every UTXO that is the collateral of one of the given TPoS contracts is
// dropped first, whatever the target, so that a payment can never close a
// contract by accident. The remaining UTXOs are walked in the given order
// and accumulated until the total reaches target; the result is the
// shortest such prefix. There is no largest-first or change-minimising
// heuristic: callers control the outcome through the order of available.
//
// When the filtered UTXOs cannot cover target the zero Selection is
// returned. A zero target also yields the zero Selection.
func SelectUTXOs(available []types.UTXO, target types.Satoshis, contracts []types.TPoSContract) Selection {
	var (
		total  types.Satoshis
		chosen []types.UTXO
	)
	for _, u := range SpendableUTXOs(available, contracts) {
		if total >= target {
			break
		}
		total += u.Satoshis
		chosen = append(chosen, u)
	}

	if total < target || len(chosen) == 0 {
		return Selection{}
	}
	return Selection{Total: total, UTXOs: chosen}
}

// SpendableUTXOs returns the UTXOs that are not TPoS collateral, preserving
// order.
func SpendableUTXOs(available []types.UTXO, contracts []types.TPoSContract) []types.UTXO {
	locked := make(map[types.Outpoint]struct{}, len(contracts))
	for _, c := range contracts {
		locked[c.Collateral()] = struct{}{}
	}
	out := make([]types.UTXO, 0, len(available))
	for _, u := range available {
		if _, ok := locked[u.Outpoint()]; !ok {
			out = append(out, u)
		}
	}
	return out
}
