package tx

import (
	"fmt"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// ReferenceTransaction is a previous transaction in the shape a signing
// device needs to verify the amounts of the outputs being spent.
type ReferenceTransaction struct {
	Hash       string      `json:"hash"`
	Version    uint32      `json:"version"`
	LockTime   uint32      `json:"lock_time"`
	Inputs     []RefInput  `json:"inputs"`
	BinOutputs []RefOutput `json:"bin_outputs"`
}

// RefInput is an input of a reference transaction.
type RefInput struct {
	PrevHash  string `json:"prev_hash"`
	PrevIndex uint32 `json:"prev_index"`
	ScriptSig string `json:"script_sig"`
	Sequence  uint32 `json:"sequence"`
}

// RefOutput is an output of a reference transaction.
type RefOutput struct {
	Amount       types.Satoshis `json:"amount"`
	ScriptPubKey string         `json:"script_pubkey"`
}

// ToReferenceTransaction translates a decoded explorer transaction.
// Output values go through the fixed-point satoshi conversion.
func ToReferenceTransaction(raw *RawTransaction) (*ReferenceTransaction, error) {
	ref := &ReferenceTransaction{
		Hash:       raw.TxID,
		Version:    raw.Version,
		LockTime:   raw.LockTime,
		Inputs:     make([]RefInput, len(raw.Inputs)),
		BinOutputs: make([]RefOutput, len(raw.Outputs)),
	}
	for i, in := range raw.Inputs {
		ref.Inputs[i] = RefInput{
			PrevHash:  in.TxID,
			PrevIndex: in.Vout,
			ScriptSig: in.ScriptSig,
			Sequence:  in.Sequence,
		}
	}
	for i, out := range raw.Outputs {
		amount, err := types.ToSatoshis(out.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: vout[%d].value: %w", ErrMalformedTransaction, i, err)
		}
		ref.BinOutputs[i] = RefOutput{
			Amount:       amount,
			ScriptPubKey: out.ScriptPubKey,
		}
	}
	return ref, nil
}

// Output returns the output at index, or false if there is none.
func (r *ReferenceTransaction) Output(index uint32) (RefOutput, bool) {
	if int(index) >= len(r.BinOutputs) {
		return RefOutput{}, false
	}
	return r.BinOutputs[index], true
}
