package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

const (
	testTxID = "483bdb594fe347052cb56c60000fba593ef7dee8bf3f069e616fbdf8353e38ae"
	prevTxID = "a2f2b2d3e1c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6"
	testAddr = "XxVj9BqtZNZTwEeE9MdWF1prgc8SKVpZ7d"
)

var rawTx = `{
  "txid": "` + testTxID + `",
  "version": 1,
  "locktime": 0,
  "vin": [{"txid": "` + prevTxID + `", "vout": 3, "scriptSig": {"hex": "00"}, "sequence": 4294967295}],
  "vout": [
    {"value": 0.565, "n": 0, "scriptPubKey": {"hex": "76a914ef389b41f17223741592c9880682240f2774caa588ac"}},
    {"value": 1.1, "n": 1, "scriptPubKey": {"hex": "0014c0cebcd6c3d3ca8c75dc5ec62ebe55330ef910e2"}}
  ]
}`

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWithTimeout(srv.URL+"/", 5*time.Second)
}

func TestGetUTXOs(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/addresses/"+testAddr+"/utxos", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		io.WriteString(w, `[{"address":"`+testAddr+`","satoshis":90900111,"script":"76a914ef389b41f17223741592c9880682240f2774caa588ac","txid":"`+testTxID+`","outputIndex":1}]`)
	})

	utxos, err := c.GetUTXOs(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	require.Equal(t, types.UTXO{
		Address:     testAddr,
		Satoshis:    90900111,
		Script:      "76a914ef389b41f17223741592c9880682240f2774caa588ac",
		TxID:        testTxID,
		OutputIndex: 1,
	}, utxos[0])
}

func TestGetBalance(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/addresses/"+testAddr, r.URL.Path)
		io.WriteString(w, `{"address":"`+testAddr+`","balance":1.5,"available":0.565,"received":2,"spent":0.5}`)
	})

	b, err := c.GetBalance(context.Background(), testAddr)
	require.NoError(t, err)
	require.Equal(t, types.Satoshis(56500000), b.Available)
	require.Equal(t, types.Satoshis(200000000), b.Received)
	require.Equal(t, types.Satoshis(50000000), b.Spent)
}

func TestGetTPoSContracts(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/addresses/"+testAddr+"/tposcontracts", r.URL.Path)
		io.WriteString(w, `{"data":[{"txid":"`+testTxID+`","index":2,"owner":"`+testAddr+`","merchant":"Xm","merchantCommission":10,"time":1000000,"state":"ACTIVE"}]}`)
	})

	contracts, err := c.GetTPoSContracts(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	require.Equal(t, types.Outpoint{TxID: testTxID, Index: 2}, contracts[0].Collateral())
	require.Equal(t, types.ContractActive, contracts[0].State)
	require.Equal(t, 10, contracts[0].Commission)
}

func TestGetReferenceTransaction(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/"+testTxID+"/raw", r.URL.Path)
		io.WriteString(w, rawTx)
	})

	ref, err := c.GetReferenceTransaction(context.Background(), testTxID)
	require.NoError(t, err)
	require.Equal(t, testTxID, ref.Hash)
	require.Len(t, ref.Inputs, 1)
	require.Equal(t, prevTxID, ref.Inputs[0].PrevHash)
	require.Equal(t, uint32(3), ref.Inputs[0].PrevIndex)
	require.Len(t, ref.BinOutputs, 2)
	require.Equal(t, types.Satoshis(56500000), ref.BinOutputs[0].Amount)
	require.Equal(t, types.Satoshis(110000000), ref.BinOutputs[1].Amount)
}

func TestGetRawTransaction_WrongTxID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, rawTx)
	})

	_, err := c.GetRawTransaction(context.Background(), prevTxID)
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetRawTransaction_Cached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, rawTx)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cache, err := NewRawTxCache(ctx, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	c := New(srv.URL, WithCache(cache))
	for i := 0; i < 3; i++ {
		raw, err := c.GetRawTransaction(ctx, testTxID)
		require.NoError(t, err)
		require.Equal(t, testTxID, raw.TxID)
	}
	require.Equal(t, int32(1), hits.Load())
}

func TestGetRawTransaction_InvalidTxID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.GetRawTransaction(context.Background(), "nope")
	require.Error(t, err)
}

func TestPushTransaction(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transactions", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "0100", body["hex"])
		io.WriteString(w, `{"txid":"`+testTxID+`"}`)
	})

	txid, err := c.PushTransaction(context.Background(), "0100")
	require.NoError(t, err)
	require.Equal(t, testTxID, txid)
}

func TestHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"bad request", http.StatusBadRequest, ErrRequestFailed},
		{"server error", http.StatusInternalServerError, ErrRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"errors":[{"message":"boom"}]}`, tt.status)
			})
			_, err := c.GetUTXOs(context.Background(), testAddr)
			require.ErrorIs(t, err, tt.want)

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			require.Equal(t, tt.status, httpErr.StatusCode)
			require.Contains(t, httpErr.Body, "boom")
		})
	}
}

func TestContextCanceled(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetUTXOs(ctx, testAddr)
	require.ErrorIs(t, err, ErrRequestFailed)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeBalance_ExponentForm(t *testing.T) {
	b, err := DecodeBalance([]byte(`{"address":"X","available":0E-8,"received":1.5E+1,"spent":15}`))
	require.NoError(t, err)
	require.Equal(t, types.Satoshis(0), b.Available)
	require.Equal(t, types.Satoshis(1_500_000_000), b.Received)
	require.Equal(t, types.Satoshis(1_500_000_000), b.Spent)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) error
		data   string
	}{
		{"utxos not json", func(d []byte) error { _, err := DecodeUTXOs(d); return err }, `nope`},
		{"utxo missing txid", func(d []byte) error { _, err := DecodeUTXOs(d); return err },
			`[{"address":"X","satoshis":1,"script":"","outputIndex":0}]`},
		{"utxo negative", func(d []byte) error { _, err := DecodeUTXOs(d); return err },
			`[{"address":"X","satoshis":-1,"script":"","txid":"` + testTxID + `","outputIndex":0}]`},
		{"utxo fractional", func(d []byte) error { _, err := DecodeUTXOs(d); return err },
			`[{"address":"X","satoshis":1.5,"script":"","txid":"` + testTxID + `","outputIndex":0}]`},
		{"utxo bad script", func(d []byte) error { _, err := DecodeUTXOs(d); return err },
			`[{"address":"X","satoshis":1,"script":"zz","txid":"` + testTxID + `","outputIndex":0}]`},
		{"contracts missing data", func(d []byte) error { _, err := DecodeContracts(d); return err }, `{}`},
		{"contract bad txid", func(d []byte) error { _, err := DecodeContracts(d); return err },
			`{"data":[{"txid":"abc","index":0}]}`},
		{"balance missing available", func(d []byte) error { _, err := DecodeBalance(d); return err }, `{"address":"X"}`},
		{"balance bad amount", func(d []byte) error { _, err := DecodeBalance(d); return err }, `{"available":"x"}`},
		{"push missing txid", func(d []byte) error { _, err := DecodePushResult(d); return err }, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.decode([]byte(tt.data)), ErrInvalidResponse)
		})
	}
}
