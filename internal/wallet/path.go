package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// Derivation path layout: m/purpose'/CoinType'/account'/change/index.
const (
	// CoinTypeXSN is the SLIP-44 coin type of XSN.
	CoinTypeXSN = 199

	// ChangeExternal is the receiving chain. Change goes back to a spent
	// address, so the internal chain is never derived.
	ChangeExternal = 0
)

// ErrInvalidPath is returned when a derivation path cannot be parsed.
var ErrInvalidPath = errors.New("invalid derivation path")

// GeneratePath returns m/<purpose>'/199'/0'/0/<index>.
func GeneratePath(purpose, index uint32) string {
	return fmt.Sprintf("m/%d'/%d'/0'/%d/%d", purpose, CoinTypeXSN, ChangeExternal, index)
}

// PathFor returns the serialized path of the index-th receiving address of
// the given type.
func PathFor(t types.AddressType, index uint32) (string, error) {
	purpose, err := t.Purpose()
	if err != nil {
		return "", err
	}
	return GeneratePath(purpose, index), nil
}

// ParsePath parses "m/44'/199'/0'/0/1" into its numeric components.
// Hardened components (suffix ' or h) have bip32.FirstHardenedChild added.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	out := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h")
		if hardened {
			p = p[:len(p)-1]
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || n >= uint64(bip32.FirstHardenedChild) {
			return nil, fmt.Errorf("%w: component %q in %q", ErrInvalidPath, p, path)
		}
		idx := uint32(n)
		if hardened {
			idx += bip32.FirstHardenedChild
		}
		out = append(out, idx)
	}
	return out, nil
}

// FormatPath is the inverse of ParsePath, writing hardened components with '.
func FormatPath(path []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, n := range path {
		b.WriteByte('/')
		if n >= bip32.FirstHardenedChild {
			b.WriteString(strconv.FormatUint(uint64(n-bip32.FirstHardenedChild), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(n), 10))
		}
	}
	return b.String()
}

// PathAddressType returns the address type implied by the purpose component
// of a parsed path.
func PathAddressType(path []uint32) (types.AddressType, error) {
	if len(path) == 0 || path[0] < bip32.FirstHardenedChild {
		return "", fmt.Errorf("%w: missing hardened purpose", ErrInvalidPath)
	}
	return types.ClassifyByPrefix(path[0] - bip32.FirstHardenedChild)
}
