package types

import (
	"strings"
	"testing"
)

func TestValidateTxID(t *testing.T) {
	if err := ValidateTxID("483bdb594fe347052cb56c60000fba593ef7dee8bf3f069e616fbdf8353e38ae"); err != nil {
		t.Errorf("valid txid rejected: %v", err)
	}
	bad := []string{
		"",
		"483bdb59",
		strings.Repeat("z", 64),
		"483bdb594fe347052cb56c60000fba593ef7dee8bf3f069e616fbdf8353e38ae00",
	}
	for _, s := range bad {
		if err := ValidateTxID(s); err == nil {
			t.Errorf("ValidateTxID(%q) should fail", s)
		}
	}
}
