package payment

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/xsnexplorer/xsn-trezor/internal/explorer"
	"github.com/xsnexplorer/xsn-trezor/internal/signer"
	"github.com/xsnexplorer/xsn-trezor/internal/storage"
	"github.com/xsnexplorer/xsn-trezor/internal/wallet"
	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	legacyAddr   = "XxVj9BqtZNZTwEeE9MdWF1prgc8SKVpZ7d"
	segwitAddr   = "xc1qvtp3xupl5vr7pruvd7q6wavxy9uqvqjwnhxzdh"
	destAddr     = "XbDx3ZCXqNqmzx2ky3XWkMBmA4gpEnKJTb"
)

func txid(n int) string {
	return fmt.Sprintf("%064x", n)
}

// fakeExplorer serves canned data and records what was asked.
type fakeExplorer struct {
	mu        sync.Mutex
	utxos     map[string][]types.UTXO
	contracts map[string][]types.TPoSContract
	balances  map[string]types.Satoshis
	refs      map[string]*tx.ReferenceTransaction
	refCalls  []string
	pushed    []string
	failUTXOs error
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		utxos:     make(map[string][]types.UTXO),
		contracts: make(map[string][]types.TPoSContract),
		balances:  make(map[string]types.Satoshis),
		refs:      make(map[string]*tx.ReferenceTransaction),
	}
}

func (f *fakeExplorer) GetBalance(_ context.Context, address string) (*explorer.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &explorer.Balance{Address: address, Available: f.balances[address]}, nil
}

func (f *fakeExplorer) GetUTXOs(_ context.Context, address string) ([]types.UTXO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUTXOs != nil {
		return nil, f.failUTXOs
	}
	return f.utxos[address], nil
}

func (f *fakeExplorer) GetTPoSContracts(_ context.Context, address string) ([]types.TPoSContract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contracts[address], nil
}

func (f *fakeExplorer) GetReferenceTransaction(_ context.Context, id string) (*tx.ReferenceTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refCalls = append(f.refCalls, id)
	ref, ok := f.refs[id]
	if !ok {
		return nil, explorer.ErrNotFound
	}
	return ref, nil
}

func (f *fakeExplorer) PushTransaction(_ context.Context, hexTx string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, hexTx)
	return txid(0xbeef), nil
}

// fakeSigner records signing requests.
type fakeSigner struct {
	requests []signer.SignRequest
	address  string
}

func (s *fakeSigner) GetAddress(context.Context, []uint32, bool) (string, error) {
	return s.address, nil
}

func (s *fakeSigner) SignTransaction(_ context.Context, req signer.SignRequest) (*signer.SignResult, error) {
	s.requests = append(s.requests, req)
	return &signer.SignResult{Serialized: "00", TxID: txid(0xbeef)}, nil
}

func (s *fakeSigner) SignMessage(context.Context, []uint32, string) (*signer.MessageSignature, error) {
	return &signer.MessageSignature{Address: s.address, Signature: "sig"}, nil
}

func newBook(t *testing.T, entries ...wallet.DeviceAddress) *wallet.Store {
	t.Helper()
	book := wallet.NewStore(storage.NewMemory(), "test")
	for _, e := range entries {
		require.NoError(t, book.Add(e))
	}
	return book
}

func entry(t *testing.T, address, path string) wallet.DeviceAddress {
	t.Helper()
	p, err := wallet.ParsePath(path)
	require.NoError(t, err)
	return wallet.DeviceAddress{Address: address, Path: p, SerializedPath: path}
}

func TestSend_UsesSignerOnce(t *testing.T) {
	ex := newFakeExplorer()
	ex.utxos[legacyAddr] = []types.UTXO{
		{Address: legacyAddr, Satoshis: 40_000_000, TxID: txid(1), OutputIndex: 0},
		{Address: legacyAddr, Satoshis: 10_000_000, TxID: txid(1), OutputIndex: 1},
	}
	ex.utxos[segwitAddr] = []types.UTXO{
		{Address: segwitAddr, Satoshis: 30_000_000, TxID: txid(2), OutputIndex: 0},
	}
	ex.refs[txid(1)] = &tx.ReferenceTransaction{Hash: txid(1)}
	ex.refs[txid(2)] = &tx.ReferenceTransaction{Hash: txid(2)}

	sg := &fakeSigner{}
	book := newBook(t,
		entry(t, legacyAddr, "m/44'/199'/0'/0/0"),
		entry(t, segwitAddr, "m/84'/199'/0'/0/0"),
	)
	svc := New(ex, sg, book)

	rcpt, err := svc.Send(context.Background(), destAddr, "0.565", "0.0001")
	require.NoError(t, err)
	require.Equal(t, txid(0xbeef), rcpt.TxID)

	require.Len(t, sg.requests, 1)
	req := sg.requests[0]
	require.Equal(t, signer.CoinName, req.Coin)
	require.Len(t, req.Inputs, 3)
	require.Len(t, req.RefTxs, 2)
	require.Equal(t, txid(1), req.RefTxs[0].Hash)
	require.Equal(t, txid(2), req.RefTxs[1].Hash)

	require.Len(t, req.Outputs, 2)
	require.Equal(t, tx.Output{Address: destAddr, Amount: "56500000", ScriptType: types.PayToAddress}, req.Outputs[0])
	require.Equal(t, tx.Output{Address: segwitAddr, Amount: "23490000", ScriptType: types.PayToWitness}, req.Outputs[1])

	require.Len(t, ex.pushed, 1)
	require.ElementsMatch(t, []string{txid(1), txid(2)}, ex.refCalls)
}

func TestSend_InsufficientFundsBeforeSigner(t *testing.T) {
	ex := newFakeExplorer()
	ex.utxos[legacyAddr] = []types.UTXO{
		{Address: legacyAddr, Satoshis: 1, TxID: txid(1), OutputIndex: 2},
		{Address: legacyAddr, Satoshis: 10, TxID: txid(2), OutputIndex: 0},
	}
	ex.contracts[legacyAddr] = []types.TPoSContract{{TxID: txid(1), Index: 2, State: types.ContractActive}}

	sg := &fakeSigner{}
	svc := New(ex, sg, newBook(t, entry(t, legacyAddr, "m/44'/199'/0'/0/0")))

	_, err := svc.Send(context.Background(), destAddr, "0.0000001", "0.00000001")
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)
	require.Empty(t, sg.requests)
	require.Empty(t, ex.refCalls)
	require.Empty(t, ex.pushed)
}

func TestSend_EmptyBook(t *testing.T) {
	svc := New(newFakeExplorer(), &fakeSigner{}, newBook(t))
	_, err := svc.Send(context.Background(), destAddr, "1", "0")
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)
}

func TestSend_ExplorerError(t *testing.T) {
	ex := newFakeExplorer()
	ex.failUTXOs = explorer.ErrRequestFailed
	sg := &fakeSigner{}
	svc := New(ex, sg, newBook(t, entry(t, legacyAddr, "m/44'/199'/0'/0/0")))

	_, err := svc.Send(context.Background(), destAddr, "1", "0")
	require.ErrorIs(t, err, explorer.ErrRequestFailed)
	require.Empty(t, sg.requests)
}

func TestSend_MissingReference(t *testing.T) {
	ex := newFakeExplorer()
	ex.utxos[legacyAddr] = []types.UTXO{{Address: legacyAddr, Satoshis: 100, TxID: txid(1)}}
	sg := &fakeSigner{}
	svc := New(ex, sg, newBook(t, entry(t, legacyAddr, "m/44'/199'/0'/0/0")))

	_, err := svc.Send(context.Background(), destAddr, "0.00000050", "0")
	require.ErrorIs(t, err, explorer.ErrNotFound)
	require.Empty(t, sg.requests)
}

func TestFunds_OrderAndLocked(t *testing.T) {
	ex := newFakeExplorer()
	ex.utxos[legacyAddr] = []types.UTXO{{Address: legacyAddr, Satoshis: 5, TxID: txid(1)}}
	ex.utxos[segwitAddr] = []types.UTXO{
		{Address: segwitAddr, Satoshis: 7, TxID: txid(2), OutputIndex: 1},
		{Address: segwitAddr, Satoshis: 9, TxID: txid(3)},
	}
	ex.contracts[segwitAddr] = []types.TPoSContract{
		{TxID: txid(2), Index: 1, State: types.ContractActive},
		{TxID: txid(4), Index: 0, State: types.ContractClosed},
	}

	svc := New(ex, &fakeSigner{}, newBook(t,
		entry(t, legacyAddr, "m/44'/199'/0'/0/0"),
		entry(t, segwitAddr, "m/84'/199'/0'/0/0"),
	), WithConcurrency(1))

	f, err := svc.Funds(context.Background())
	require.NoError(t, err)
	require.Len(t, f.UTXOs, 3)
	require.Equal(t, txid(1), f.UTXOs[0].TxID)
	require.Equal(t, txid(3), f.UTXOs[2].TxID)
	require.Equal(t, types.Satoshis(14), types.SumSatoshis(f.Spendable()))
	require.Len(t, f.Locked(), 1)
	require.Equal(t, txid(2), f.Locked()[0].TxID)

	c, ok := f.Contract(types.Outpoint{TxID: txid(2), Index: 1})
	require.True(t, ok)
	require.True(t, c.Active())
	_, ok = f.Contract(types.Outpoint{TxID: txid(3)})
	require.False(t, ok)

	active, closed := f.ContractStates()
	require.Equal(t, 1, active)
	require.Equal(t, 1, closed)
}

func TestBalances(t *testing.T) {
	ex := newFakeExplorer()
	ex.balances[legacyAddr] = 100
	ex.balances[segwitAddr] = 23
	svc := New(ex, &fakeSigner{}, newBook(t,
		entry(t, legacyAddr, "m/44'/199'/0'/0/0"),
		entry(t, segwitAddr, "m/84'/199'/0'/0/0"),
	))

	bals, total, err := svc.Balances(context.Background())
	require.NoError(t, err)
	require.Equal(t, types.Satoshis(123), total)
	require.Len(t, bals, 2)
	require.Equal(t, legacyAddr, bals[0].Address)
	require.Equal(t, types.Satoshis(23), bals[1].Balance.Available)
}

func TestNewAddress_WrongType(t *testing.T) {
	svc := New(newFakeExplorer(), &fakeSigner{address: legacyAddr}, newBook(t))
	_, err := svc.NewAddress(context.Background(), types.Segwit)
	require.ErrorIs(t, err, ErrAddressMismatch)
}

func TestVerifyAddress_Mismatch(t *testing.T) {
	svc := New(newFakeExplorer(), &fakeSigner{address: segwitAddr},
		newBook(t, entry(t, legacyAddr, "m/44'/199'/0'/0/0")))

	_, err := svc.VerifyAddress(context.Background(), legacyAddr)
	require.ErrorIs(t, err, ErrAddressMismatch)

	_, err = svc.VerifyAddress(context.Background(), destAddr)
	require.ErrorIs(t, err, wallet.ErrAddressNotFound)
}

func newSoftwareService(t *testing.T, ex Explorer) *Service {
	t.Helper()
	sw, err := signer.NewSoftwareFromMnemonic(testMnemonic, "", &signer.MainNetParams)
	require.NoError(t, err)
	return New(ex, sw, newBook(t))
}

func TestAddressLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newSoftwareService(t, newFakeExplorer())

	first, err := svc.NewAddress(ctx, types.Segwit)
	require.NoError(t, err)
	require.Equal(t, "m/84'/199'/0'/0/0", first.SerializedPath)

	second, err := svc.NewAddress(ctx, types.Segwit)
	require.NoError(t, err)
	require.Equal(t, "m/84'/199'/0'/0/1", second.SerializedPath)
	require.NotEqual(t, first.Address, second.Address)

	legacy, err := svc.NewAddress(ctx, types.Legacy)
	require.NoError(t, err)
	require.Equal(t, "m/44'/199'/0'/0/0", legacy.SerializedPath)
	require.Equal(t, byte('X'), legacy.Address[0])

	_, err = svc.VerifyAddress(ctx, second.Address)
	require.NoError(t, err)

	sig, err := svc.SignMessage(ctx, legacy.Address, "hello xsn")
	require.NoError(t, err)
	require.NoError(t, signer.VerifyMessage(legacy.Address, sig.Signature, "hello xsn", &signer.MainNetParams))

	require.NoError(t, svc.Reset())
	list, err := svc.Book().List()
	require.NoError(t, err)
	require.Empty(t, list)
}

// fund creates a reference transaction paying value to address at output 0.
func fund(t *testing.T, ex *fakeExplorer, id string, address string, value types.Satoshis) {
	t.Helper()
	addr, err := btcutil.DecodeAddress(address, &signer.MainNetParams)
	require.NoError(t, err)
	script, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	ex.refs[id] = &tx.ReferenceTransaction{
		Hash:    id,
		Version: 1,
		Inputs: []tx.RefInput{{
			PrevHash:  txid(0xaa),
			PrevIndex: 0,
			ScriptSig: "",
			Sequence:  wire.MaxTxInSequenceNum,
		}},
		BinOutputs: []tx.RefOutput{{Amount: value, ScriptPubKey: hex.EncodeToString(script)}},
	}
	ex.utxos[address] = append(ex.utxos[address], types.UTXO{
		Address:     address,
		Satoshis:    value,
		Script:      hex.EncodeToString(script),
		TxID:        id,
		OutputIndex: 0,
	})
}

func TestSend_SoftwareSigner(t *testing.T) {
	ctx := context.Background()
	ex := newFakeExplorer()
	svc := newSoftwareService(t, ex)

	var addrs []string
	for _, at := range []types.AddressType{types.Legacy, types.P2SHSegwit, types.Segwit} {
		d, err := svc.NewAddress(ctx, at)
		require.NoError(t, err)
		addrs = append(addrs, d.Address)
	}
	for i, a := range addrs {
		fund(t, ex, txid(10+i), a, 30_000_000)
	}

	rcpt, err := svc.Send(ctx, destAddr, "0.7", "0.001")
	require.NoError(t, err)
	require.Len(t, ex.pushed, 1)

	raw, err := hex.DecodeString(ex.pushed[0])
	require.NoError(t, err)
	var msgTx wire.MsgTx
	require.NoError(t, msgTx.Deserialize(bytes.NewReader(raw)))
	require.Len(t, msgTx.TxIn, 3)
	require.Len(t, msgTx.TxOut, 2)
	require.Equal(t, int64(70_000_000), msgTx.TxOut[0].Value)
	require.Equal(t, int64(19_900_000), msgTx.TxOut[1].Value)
	require.Equal(t, addrs[2], rcpt.Payment.ChangeAddress)
	for i, in := range msgTx.TxIn {
		require.Equal(t, txid(10+i), in.PreviousOutPoint.Hash.String())
	}
}

func TestSend_SignerRejectsTamperedReference(t *testing.T) {
	ctx := context.Background()
	ex := newFakeExplorer()
	svc := newSoftwareService(t, ex)

	d, err := svc.NewAddress(ctx, types.Segwit)
	require.NoError(t, err)
	fund(t, ex, txid(20), d.Address, 50_000_000)
	ex.refs[txid(20)].BinOutputs[0].Amount = 60_000_000

	_, err = svc.Send(ctx, destAddr, "0.1", "0.0001")
	require.True(t, errors.Is(err, signer.ErrSignerFailed), "err = %v", err)
	require.Empty(t, ex.pushed)
}
