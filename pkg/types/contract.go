package types

// Contract states reported by the explorer.
const (
	ContractActive = "ACTIVE"
	ContractClosed = "CLOSED"
)

// TPoSContract is a trustless proof-of-stake contract. The output at
// (TxID, Index) is the contract's collateral: spending it closes the
// contract, so general-purpose coin selection must never touch it.
type TPoSContract struct {
	TxID       string `json:"txid"`
	Index      uint32 `json:"index"`
	Owner      string `json:"owner"`
	Merchant   string `json:"merchant"`
	Commission int    `json:"merchantCommission"` // percent
	CreatedAt  int64  `json:"time"`               // unix seconds
	State      string `json:"state"`
}

// Collateral returns the outpoint locked by the contract.
func (c TPoSContract) Collateral() Outpoint {
	return Outpoint{TxID: c.TxID, Index: c.Index}
}

// Active reports whether the contract is still running.
func (c TPoSContract) Active() bool {
	return c.State == ContractActive
}

// Closed reports whether the contract has been closed by its owner.
func (c TPoSContract) Closed() bool {
	return c.State == ContractClosed
}
