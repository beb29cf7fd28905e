package tx

import (
	"errors"
	"strings"
	"testing"

	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

const (
	refTxID  = "483bdb594fe347052cb56c60000fba593ef7dee8bf3f069e616fbdf8353e38ae"
	prevTxID = "24c3f6c4e4bfb5bf4ae5b1ff5bb27fe6d4b1e4fc10fa51f0ae1b2d4e0d9d2f8a"
)

const sampleRaw = `{
  "txid": "` + refTxID + `",
  "size": 225,
  "version": 1,
  "locktime": "478214",
  "vin": [{
    "txid": "` + prevTxID + `",
    "vout": 0,
    "scriptSig": {"asm": "", "hex": "483045022100abcdef"},
    "sequence": 4294967294
  }],
  "vout": [{
    "value": 1.1,
    "n": 0,
    "scriptPubKey": {"hex": "76a914ef389b41f17223741592c9880682240f2774caa588ac"}
  }],
  "blockhash": "000000000000000002a3c1e7e3d3fdd4e7fa2e6c58d1c6b1e2f0a2b6e3f4a5b6",
  "confirmations": 12
}`

func TestDecodeRawTransaction(t *testing.T) {
	raw, err := DecodeRawTransaction([]byte(sampleRaw))
	if err != nil {
		t.Fatalf("DecodeRawTransaction: %v", err)
	}
	if raw.TxID != refTxID {
		t.Errorf("txid = %s, want %s", raw.TxID, refTxID)
	}
	if raw.LockTime != 478214 {
		t.Errorf("locktime = %d, want 478214", raw.LockTime)
	}
	if raw.Version != 1 {
		t.Errorf("version = %d, want 1", raw.Version)
	}
	if len(raw.Inputs) != 1 || len(raw.Outputs) != 1 {
		t.Fatalf("inputs/outputs = %d/%d, want 1/1", len(raw.Inputs), len(raw.Outputs))
	}
	if raw.Outputs[0].Value != "1.1" {
		t.Errorf("value literal = %q, want %q", raw.Outputs[0].Value, "1.1")
	}
	if raw.Inputs[0].Sequence != 4294967294 {
		t.Errorf("sequence = %d", raw.Inputs[0].Sequence)
	}
}

func TestToReferenceTransaction(t *testing.T) {
	raw, err := DecodeRawTransaction([]byte(sampleRaw))
	if err != nil {
		t.Fatalf("DecodeRawTransaction: %v", err)
	}
	ref, err := ToReferenceTransaction(raw)
	if err != nil {
		t.Fatalf("ToReferenceTransaction: %v", err)
	}

	if ref.Hash != refTxID {
		t.Errorf("hash = %s, want %s", ref.Hash, refTxID)
	}
	if ref.LockTime != 478214 {
		t.Errorf("lock_time = %d, want 478214", ref.LockTime)
	}
	if ref.Version != 1 {
		t.Errorf("version = %d, want 1", ref.Version)
	}

	wantIn := RefInput{
		PrevHash:  prevTxID,
		PrevIndex: 0,
		ScriptSig: "483045022100abcdef",
		Sequence:  4294967294,
	}
	if ref.Inputs[0] != wantIn {
		t.Errorf("inputs[0] = %+v, want %+v", ref.Inputs[0], wantIn)
	}

	wantOut := RefOutput{
		Amount:       110000000,
		ScriptPubKey: "76a914ef389b41f17223741592c9880682240f2774caa588ac",
	}
	if ref.BinOutputs[0] != wantOut {
		t.Errorf("bin_outputs[0] = %+v, want %+v", ref.BinOutputs[0], wantOut)
	}

	out, ok := ref.Output(0)
	if !ok || out != wantOut {
		t.Errorf("Output(0) = %+v, %v", out, ok)
	}
	if _, ok := ref.Output(1); ok {
		t.Error("Output(1) should not exist")
	}
}

func TestDecodeRawTransaction_NumericForms(t *testing.T) {
	data := strings.NewReplacer(
		`"locktime": "478214"`, `"locktime": 478214`,
		`"vout": 0,`, `"vout": "3",`,
	).Replace(sampleRaw)

	raw, err := DecodeRawTransaction([]byte(data))
	if err != nil {
		t.Fatalf("DecodeRawTransaction: %v", err)
	}
	if raw.LockTime != 478214 {
		t.Errorf("locktime = %d, want 478214", raw.LockTime)
	}
	if raw.Inputs[0].Vout != 3 {
		t.Errorf("vin[0].vout = %d, want 3", raw.Inputs[0].Vout)
	}

	// Zero-value outputs re-serialized in exponent form still translate.
	data = strings.Replace(sampleRaw, `"value": 1.1`, `"value": 0E-8`, 1)
	raw, err = DecodeRawTransaction([]byte(data))
	if err != nil {
		t.Fatalf("DecodeRawTransaction(0E-8): %v", err)
	}
	ref, err := ToReferenceTransaction(raw)
	if err != nil {
		t.Fatalf("ToReferenceTransaction(0E-8): %v", err)
	}
	if got := ref.BinOutputs[0].Amount; got != 0 {
		t.Errorf("0E-8 amount = %d, want 0", got)
	}
}

func TestDecodeRawTransaction_ExactValues(t *testing.T) {
	tests := []struct {
		value   string
		want    types.Satoshis
		wantErr bool
	}{
		{"0.565", 56500000, false},
		{"0.00000001", 1, false},
		{"77790.0000001", 7779000000010, false},
		{"1e-8", 1, false},
		{"1E-8", 1, false},
		{"0E-8", 0, false},
		{"1.1E+1", 1100000000, false},
		{"-1", 0, true},
		{"1e1000", 0, true},
	}

	for _, tt := range tests {
		data := strings.Replace(sampleRaw, `"value": 1.1`, `"value": `+tt.value, 1)
		raw, err := DecodeRawTransaction([]byte(data))
		if err != nil {
			t.Fatalf("%s: DecodeRawTransaction: %v", tt.value, err)
		}
		ref, err := ToReferenceTransaction(raw)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedTransaction) {
				t.Errorf("%s: err = %v, want ErrMalformedTransaction", tt.value, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: ToReferenceTransaction: %v", tt.value, err)
		}
		if got := ref.BinOutputs[0].Amount; got != tt.want {
			t.Errorf("%s: amount = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestDecodeRawTransaction_Coinbase(t *testing.T) {
	data := `{
	  "txid": "` + refTxID + `",
	  "version": 1,
	  "locktime": 0,
	  "vin": [{"coinbase": "03a1b2c3", "sequence": 4294967295}],
	  "vout": [{"value": 2.25, "n": 0, "scriptPubKey": {"hex": "76a914"}}]
	}`
	raw, err := DecodeRawTransaction([]byte(data))
	if err != nil {
		t.Fatalf("DecodeRawTransaction: %v", err)
	}
	in := raw.Inputs[0]
	if !in.Coinbase {
		t.Error("input should be marked coinbase")
	}
	if in.TxID != strings.Repeat("0", 64) || in.Vout != CoinbaseIndex {
		t.Errorf("coinbase prevout = %s:%d", in.TxID, in.Vout)
	}
	if in.ScriptSig != "03a1b2c3" {
		t.Errorf("coinbase scriptSig = %q", in.ScriptSig)
	}
}

func TestDecodeRawTransaction_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		field string
	}{
		{"txid", `"txid": "` + refTxID + `",`, ``, "txid"},
		{"version", `"version": 1,`, ``, "version"},
		{"locktime", `"locktime": "478214",`, ``, "locktime"},
		{"vin txid", `"txid": "` + prevTxID + `",`, ``, "vin[0].txid"},
		{"vin vout", `"vout": 0,`, ``, "vin[0].vout"},
		{"vin scriptSig", `"scriptSig": {"asm": "", "hex": "483045022100abcdef"},`, ``, "vin[0].scriptSig.hex"},
		{"vin scriptSig hex", `"hex": "483045022100abcdef"`, `"asm": "x"`, "vin[0].scriptSig.hex"},
		{"vin sequence", `,
    "sequence": 4294967294`, ``, "vin[0].sequence"},
		{"vout value", `"value": 1.1,`, ``, "vout[0].value"},
		{"vout script", `"hex": "76a914ef389b41f17223741592c9880682240f2774caa588ac"`, ``, "vout[0].scriptPubKey.hex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(sampleRaw, tt.from, tt.to, 1)
			if data == sampleRaw {
				t.Fatalf("replacement %q did not apply", tt.from)
			}
			_, err := DecodeRawTransaction([]byte(data))
			if !errors.Is(err, ErrMalformedTransaction) {
				t.Fatalf("err = %v, want ErrMalformedTransaction", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("err = %v, should name %s", err, tt.field)
			}
		})
	}
}

func TestDecodeRawTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"empty object", `{}`},
		{"bad txid", strings.Replace(sampleRaw, refTxID, "abc", 1)},
		{"negative vout", strings.Replace(sampleRaw, `"vout": 0,`, `"vout": -1,`, 1)},
		{"empty vin", `{"txid":"` + refTxID + `","version":1,"locktime":0,"vin":[],"vout":[{"value":1,"scriptPubKey":{"hex":""}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRawTransaction([]byte(tt.data)); !errors.Is(err, ErrMalformedTransaction) {
				t.Errorf("err = %v, want ErrMalformedTransaction", err)
			}
		})
	}
}
