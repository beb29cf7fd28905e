package types

import "fmt"

// Role says whether an address is spent from or paid to.
type Role string

const (
	RoleInput  Role = "SPEND"
	RoleOutput Role = "PAYTO"
)

// ScriptType is the signer's script tag, e.g. SPENDADDRESS or PAYTOWITNESS.
type ScriptType string

const (
	SpendAddress     ScriptType = "SPENDADDRESS"
	SpendWitness     ScriptType = "SPENDWITNESS"
	SpendP2SHWitness ScriptType = "SPENDP2SHWITNESS"
	PayToAddress     ScriptType = "PAYTOADDRESS"
	PayToWitness     ScriptType = "PAYTOWITNESS"
	PayToP2SHWitness ScriptType = "PAYTOP2SHWITNESS"
)

// String returns the wire name.
func (s ScriptType) String() string {
	return string(s)
}

// ScriptTypeFor returns the signer script tag for an address used in the
// given role.
func ScriptTypeFor(address string, role Role) (ScriptType, error) {
	if role != RoleInput && role != RoleOutput {
		return "", fmt.Errorf("%w: role %q", ErrUnknownScriptType, string(role))
	}
	at, err := ClassifyAddress(address)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnknownScriptType, err)
	}
	return ScriptType(string(role) + string(at)), nil
}

// AddressType returns the address type a script tag spends from or pays to.
func (s ScriptType) AddressType() (AddressType, error) {
	switch s {
	case SpendAddress, PayToAddress:
		return Legacy, nil
	case SpendP2SHWitness, PayToP2SHWitness:
		return P2SHSegwit, nil
	case SpendWitness, PayToWitness:
		return Segwit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScriptType, string(s))
	}
}
