package tx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// ErrMalformedTransaction is returned when an explorer raw transaction is
// missing a field or carries a value of the wrong shape.
var ErrMalformedTransaction = errors.New("malformed raw transaction")

// CoinbaseIndex is the previous output index of a coinbase input.
const CoinbaseIndex = 0xffffffff

// coinbasePrevHash is the all-zero previous hash of a coinbase input.
var coinbasePrevHash = strings.Repeat("0", types.HashSize*2)

// RawTransaction is a transaction as returned by the explorer's
// /transactions/{txid}/raw endpoint.
type RawTransaction struct {
	TxID     string
	Version  uint32
	LockTime uint32
	Inputs   []RawInput
	Outputs  []RawOutput
	Hex      string // serialized transaction, when the explorer sends it
}

// RawInput is a "vin" entry.
type RawInput struct {
	TxID      string
	Vout      uint32
	ScriptSig string // hex
	Sequence  uint32
	Coinbase  bool
}

// RawOutput is a "vout" entry. Value is the decimal literal exactly as the
// explorer sent it.
type RawOutput struct {
	Value        string
	N            uint32
	ScriptPubKey string // hex
}

type rawTxJSON struct {
	TxID     *string         `json:"txid"`
	Version  *flexUint32     `json:"version"`
	LockTime *flexUint32     `json:"locktime"`
	Vin      []rawInputJSON  `json:"vin"`
	Vout     []rawOutputJSON `json:"vout"`
	Hex      string          `json:"hex"`
}

type rawInputJSON struct {
	TxID      *string     `json:"txid"`
	Vout      *flexUint32 `json:"vout"`
	ScriptSig *hexField   `json:"scriptSig"`
	Coinbase  *string     `json:"coinbase"`
	Sequence  *flexUint32 `json:"sequence"`
}

type rawOutputJSON struct {
	Value        *json.Number `json:"value"`
	N            flexUint32   `json:"n"`
	ScriptPubKey *hexField    `json:"scriptPubKey"`
}

type hexField struct {
	Hex *string `json:"hex"`
}

// flexUint32 accepts a JSON number or a numeric string.
type flexUint32 uint32

func (f *flexUint32) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("not a uint32: %s", data)
	}
	*f = flexUint32(n)
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedTransaction, field)
}

// DecodeRawTransaction parses and validates an explorer raw transaction.
// Every field used by ToReferenceTransaction must be present.
func DecodeRawTransaction(data []byte) (*RawTransaction, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var j rawTxJSON
	if err := dec.Decode(&j); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}

	switch {
	case j.TxID == nil:
		return nil, missing("txid")
	case j.Version == nil:
		return nil, missing("version")
	case j.LockTime == nil:
		return nil, missing("locktime")
	case len(j.Vin) == 0:
		return nil, missing("vin")
	case len(j.Vout) == 0:
		return nil, missing("vout")
	}
	if err := types.ValidateTxID(*j.TxID); err != nil {
		return nil, fmt.Errorf("%w: txid: %w", ErrMalformedTransaction, err)
	}

	raw := &RawTransaction{
		TxID:     *j.TxID,
		Version:  uint32(*j.Version),
		LockTime: uint32(*j.LockTime),
		Inputs:   make([]RawInput, len(j.Vin)),
		Outputs:  make([]RawOutput, len(j.Vout)),
		Hex:      j.Hex,
	}

	for i, in := range j.Vin {
		if in.Sequence == nil {
			return nil, missing(fmt.Sprintf("vin[%d].sequence", i))
		}
		if in.Coinbase != nil {
			raw.Inputs[i] = RawInput{
				TxID:      coinbasePrevHash,
				Vout:      CoinbaseIndex,
				ScriptSig: *in.Coinbase,
				Sequence:  uint32(*in.Sequence),
				Coinbase:  true,
			}
			continue
		}
		switch {
		case in.TxID == nil:
			return nil, missing(fmt.Sprintf("vin[%d].txid", i))
		case in.Vout == nil:
			return nil, missing(fmt.Sprintf("vin[%d].vout", i))
		case in.ScriptSig == nil || in.ScriptSig.Hex == nil:
			return nil, missing(fmt.Sprintf("vin[%d].scriptSig.hex", i))
		}
		raw.Inputs[i] = RawInput{
			TxID:      *in.TxID,
			Vout:      uint32(*in.Vout),
			ScriptSig: *in.ScriptSig.Hex,
			Sequence:  uint32(*in.Sequence),
		}
	}

	for i, out := range j.Vout {
		switch {
		case out.Value == nil:
			return nil, missing(fmt.Sprintf("vout[%d].value", i))
		case out.ScriptPubKey == nil || out.ScriptPubKey.Hex == nil:
			return nil, missing(fmt.Sprintf("vout[%d].scriptPubKey.hex", i))
		}
		raw.Outputs[i] = RawOutput{
			Value:        out.Value.String(),
			N:            uint32(out.N),
			ScriptPubKey: *out.ScriptPubKey.Hex,
		}
	}
	return raw, nil
}
