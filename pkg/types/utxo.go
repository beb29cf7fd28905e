package types

// UTXO is an unspent output as reported by the explorer backend.
// UTXOs are facts fetched from the backend; they are filtered and selected,
// never mutated.
type UTXO struct {
	Address     string   `json:"address"`
	Satoshis    Satoshis `json:"satoshis"`
	Script      string   `json:"script"` // locking script, hex
	TxID        string   `json:"txid"`
	OutputIndex uint32   `json:"outputIndex"`
}

// Outpoint returns the (txid, index) pair that identifies this output.
func (u UTXO) Outpoint() Outpoint {
	return Outpoint{TxID: u.TxID, Index: u.OutputIndex}
}

// SumSatoshis returns the total value of the given UTXOs.
func SumSatoshis(utxos []UTXO) Satoshis {
	var total Satoshis
	for _, u := range utxos {
		total += u.Satoshis
	}
	return total
}
