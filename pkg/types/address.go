package types

import (
	"errors"
	"fmt"
)

// Classification errors.
var (
	ErrUnknownAddressType = errors.New("unknown address type")
	ErrUnknownScriptType  = errors.New("unknown script type")
)

// AddressType identifies how an XSN address locks its funds.
// The string value is the name the signing protocol uses.
type AddressType string

const (
	Legacy     AddressType = "ADDRESS"     // P2PKH, "X..."
	P2SHSegwit AddressType = "P2SHWITNESS" // P2SH-wrapped P2WPKH, "7..."
	Segwit     AddressType = "WITNESS"     // native P2WPKH, "xc1..."
)

// BIP-43 purpose values for each address type.
const (
	PurposeLegacy     uint32 = 44
	PurposeP2SHSegwit uint32 = 49
	PurposeSegwit     uint32 = 84
)

// String returns a human-readable name for the address type.
func (t AddressType) String() string {
	switch t {
	case Legacy:
		return "legacy"
	case P2SHSegwit:
		return "p2sh-segwit"
	case Segwit:
		return "segwit"
	default:
		return "unknown"
	}
}

// Purpose returns the derivation-path purpose used for this address type.
func (t AddressType) Purpose() (uint32, error) {
	switch t {
	case Legacy:
		return PurposeLegacy, nil
	case P2SHSegwit:
		return PurposeP2SHSegwit, nil
	case Segwit:
		return PurposeSegwit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAddressType, string(t))
	}
}

// ParseAddressType accepts the CLI spelling ("legacy", "p2sh-segwit",
// "segwit") or the wire name.
func ParseAddressType(s string) (AddressType, error) {
	switch s {
	case "legacy", string(Legacy):
		return Legacy, nil
	case "p2sh-segwit", "p2sh", string(P2SHSegwit):
		return P2SHSegwit, nil
	case "segwit", string(Segwit):
		return Segwit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAddressType, s)
	}
}

// ClassifyAddress derives the address type from the first character of an
// address. The empty string is not a valid address.
func ClassifyAddress(address string) (AddressType, error) {
	if address == "" {
		return "", fmt.Errorf("%w: empty address", ErrUnknownAddressType)
	}
	switch address[0] {
	case 'X':
		return Legacy, nil
	case '7':
		return P2SHSegwit, nil
	case 'x':
		return Segwit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAddressType, address)
	}
}

// ClassifyByPrefix derives the address type from the purpose component of a
// derivation path (44, 49 or 84).
func ClassifyByPrefix(purpose uint32) (AddressType, error) {
	switch purpose {
	case PurposeLegacy:
		return Legacy, nil
	case PurposeP2SHSegwit:
		return P2SHSegwit, nil
	case PurposeSegwit:
		return Segwit, nil
	default:
		return "", fmt.Errorf("%w: purpose %d", ErrUnknownAddressType, purpose)
	}
}
