package explorer

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// Balance is the balance of an address.
type Balance struct {
	Address   string
	Available types.Satoshis
	Received  types.Satoshis
	Spent     types.Satoshis
}

type balanceJSON struct {
	Address   string       `json:"address"`
	Available *json.Number `json:"available"`
	Received  json.Number  `json:"received"`
	Spent     json.Number  `json:"spent"`
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...))
}

func amount(n json.Number, field string) (types.Satoshis, error) {
	if n == "" {
		return 0, nil
	}
	s, err := types.ToSatoshis(n.String())
	if err != nil {
		return 0, invalid("%s: %v", field, err)
	}
	return s, nil
}

// DecodeBalance parses the /addresses/{address} payload. Amounts are
// decimal XSN values.
func DecodeBalance(data []byte) (*Balance, error) {
	var j balanceJSON
	if err := decodeJSON(data, &j); err != nil {
		return nil, err
	}
	if j.Available == nil {
		return nil, invalid("missing available")
	}
	b := &Balance{Address: j.Address}
	var err error
	if b.Available, err = amount(*j.Available, "available"); err != nil {
		return nil, err
	}
	if b.Received, err = amount(j.Received, "received"); err != nil {
		return nil, err
	}
	if b.Spent, err = amount(j.Spent, "spent"); err != nil {
		return nil, err
	}
	return b, nil
}

type utxoJSON struct {
	Address     *string      `json:"address"`
	Satoshis    *json.Number `json:"satoshis"`
	Script      string       `json:"script"`
	TxID        *string      `json:"txid"`
	OutputIndex *uint32      `json:"outputIndex"`
}

// DecodeUTXOs parses the /addresses/{address}/utxos payload.
func DecodeUTXOs(data []byte) ([]types.UTXO, error) {
	var list []utxoJSON
	if err := decodeJSON(data, &list); err != nil {
		return nil, err
	}
	out := make([]types.UTXO, len(list))
	for i, j := range list {
		switch {
		case j.Address == nil || *j.Address == "":
			return nil, invalid("utxo %d: missing address", i)
		case j.TxID == nil:
			return nil, invalid("utxo %d: missing txid", i)
		case j.OutputIndex == nil:
			return nil, invalid("utxo %d: missing outputIndex", i)
		case j.Satoshis == nil:
			return nil, invalid("utxo %d: missing satoshis", i)
		}
		if err := types.ValidateTxID(*j.TxID); err != nil {
			return nil, invalid("utxo %d: %v", i, err)
		}
		sat, err := j.Satoshis.Int64()
		if err != nil || sat < 0 {
			return nil, invalid("utxo %d: satoshis %q", i, j.Satoshis.String())
		}
		if _, err := hex.DecodeString(j.Script); err != nil {
			return nil, invalid("utxo %d: script: %v", i, err)
		}
		out[i] = types.UTXO{
			Address:     *j.Address,
			Satoshis:    types.Satoshis(sat),
			Script:      j.Script,
			TxID:        *j.TxID,
			OutputIndex: *j.OutputIndex,
		}
	}
	return out, nil
}

type contractJSON struct {
	TxID       *string `json:"txid"`
	Index      *uint32 `json:"index"`
	Owner      string  `json:"owner"`
	Merchant   string  `json:"merchant"`
	Commission int     `json:"merchantCommission"`
	Time       int64   `json:"time"`
	State      string  `json:"state"`
}

// DecodeContracts parses the /addresses/{address}/tposcontracts payload,
// {"data": [...]}.
func DecodeContracts(data []byte) ([]types.TPoSContract, error) {
	var page struct {
		Data *[]contractJSON `json:"data"`
	}
	if err := decodeJSON(data, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		return nil, invalid("missing data")
	}
	out := make([]types.TPoSContract, len(*page.Data))
	for i, j := range *page.Data {
		if j.TxID == nil || j.Index == nil {
			return nil, invalid("contract %d: missing txid or index", i)
		}
		if err := types.ValidateTxID(*j.TxID); err != nil {
			return nil, invalid("contract %d: %v", i, err)
		}
		out[i] = types.TPoSContract{
			TxID:       *j.TxID,
			Index:      *j.Index,
			Owner:      j.Owner,
			Merchant:   j.Merchant,
			Commission: j.Commission,
			CreatedAt:  j.Time,
			State:      j.State,
		}
	}
	return out, nil
}

// DecodePushResult parses the POST /transactions payload.
func DecodePushResult(data []byte) (string, error) {
	var j struct {
		TxID string `json:"txid"`
	}
	if err := decodeJSON(data, &j); err != nil {
		return "", err
	}
	if err := types.ValidateTxID(j.TxID); err != nil {
		return "", invalid("txid: %v", err)
	}
	return j.TxID, nil
}
