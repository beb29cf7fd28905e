// Package tx defines the transaction shapes exchanged with a signing device
// and the translation of explorer raw transactions into reference
// transactions.
package tx

import (
	"fmt"
	"strconv"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// Input is one input of a signing request. Amount is the spent output's
// value in satoshis, as a decimal string.
type Input struct {
	AddressN   []uint32         `json:"address_n"`
	PrevHash   string           `json:"prev_hash"`
	PrevIndex  uint32           `json:"prev_index"`
	Amount     string           `json:"amount"`
	ScriptType types.ScriptType `json:"script_type"`
}

// Output is one output of a signing request.
type Output struct {
	Address    string           `json:"address"`
	Amount     string           `json:"amount"`
	ScriptType types.ScriptType `json:"script_type"`
}

// NewInput builds the signing input that spends u with the key at path.
func NewInput(u types.UTXO, path []uint32) (Input, error) {
	st, err := types.ScriptTypeFor(u.Address, types.RoleInput)
	if err != nil {
		return Input{}, err
	}
	return Input{
		AddressN:   append([]uint32(nil), path...),
		PrevHash:   u.TxID,
		PrevIndex:  u.OutputIndex,
		Amount:     strconv.FormatInt(int64(u.Satoshis), 10),
		ScriptType: st,
	}, nil
}

// NewOutput builds a signing output paying amount to address.
func NewOutput(address string, amount types.Satoshis) (Output, error) {
	st, err := types.ScriptTypeFor(address, types.RoleOutput)
	if err != nil {
		return Output{}, err
	}
	return Output{
		Address:    address,
		Amount:     strconv.FormatInt(int64(amount), 10),
		ScriptType: st,
	}, nil
}

// Satoshis parses the input amount.
func (in Input) Satoshis() (types.Satoshis, error) {
	return parseSatoshis(in.Amount)
}

// Satoshis parses the output amount.
func (out Output) Satoshis() (types.Satoshis, error) {
	return parseSatoshis(out.Amount)
}

func parseSatoshis(s string) (types.Satoshis, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidAmount, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", types.ErrNegativeAmount, n)
	}
	return types.Satoshis(n), nil
}
