package signer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// TxVersion is the version of transactions built by the software signer.
const TxVersion = 1

// spend is a resolved input: the key that signs it and the output it spends.
type spend struct {
	key      *HDKey
	addrType types.AddressType
	prevOut  *wire.TxOut
}

func signerErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSignerFailed, fmt.Sprintf(format, args...))
}

// signTransaction checks every input against its reference transaction,
// builds the transaction and signs all inputs with SIGHASH_ALL.
func signTransaction(master *HDKey, params *chaincfg.Params, req SignRequest) (*SignResult, error) {
	if len(req.Inputs) == 0 || len(req.Outputs) == 0 {
		return nil, signerErr("transaction needs inputs and outputs")
	}

	refs := make(map[string]*tx.ReferenceTransaction, len(req.RefTxs))
	for _, r := range req.RefTxs {
		refs[r.Hash] = r
	}

	msgTx := wire.NewMsgTx(TxVersion)
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	spends := make([]spend, len(req.Inputs))
	var totalIn, totalOut types.Satoshis

	for i, in := range req.Inputs {
		sp, err := resolveInput(master, params, refs, in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		hash, err := chainhash.NewHashFromStr(in.PrevHash)
		if err != nil {
			return nil, signerErr("input %d: prev hash: %v", i, err)
		}
		op := wire.NewOutPoint(hash, in.PrevIndex)
		msgTx.AddTxIn(wire.NewTxIn(op, nil, nil))
		fetcher.AddPrevOut(*op, sp.prevOut)
		spends[i] = sp
		totalIn += types.Satoshis(sp.prevOut.Value)
	}

	for i, out := range req.Outputs {
		txOut, err := outputScript(params, out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		msgTx.AddTxOut(txOut)
		totalOut += types.Satoshis(txOut.Value)
	}
	if totalOut > totalIn {
		return nil, signerErr("outputs %s exceed inputs %s", totalOut, totalIn)
	}

	sigHashes := txscript.NewTxSigHashes(msgTx, fetcher)
	sigs := make([]string, len(spends))
	for i, sp := range spends {
		sig, err := signInput(msgTx, sigHashes, i, sp, params)
		if err != nil {
			return nil, fmt.Errorf("%w: sign input %d: %w", ErrSignerFailed, i, err)
		}
		sigs[i] = hex.EncodeToString(sig)
	}

	var buf bytes.Buffer
	if err := msgTx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: serialize: %w", ErrSignerFailed, err)
	}
	return &SignResult{
		Serialized: hex.EncodeToString(buf.Bytes()),
		Signatures: sigs,
		TxID:       msgTx.TxHash().String(),
	}, nil
}

// resolveInput derives the input's key and verifies, as a hardware device
// does, that the reference transaction's output pays that key the claimed
// amount.
func resolveInput(master *HDKey, params *chaincfg.Params, refs map[string]*tx.ReferenceTransaction, in tx.Input) (spend, error) {
	at, err := in.ScriptType.AddressType()
	if err != nil || !strings.HasPrefix(string(in.ScriptType), string(types.RoleInput)) {
		return spend{}, fmt.Errorf("%w: %s", ErrUnsupportedScript, in.ScriptType)
	}
	amount, err := in.Satoshis()
	if err != nil {
		return spend{}, signerErr("amount: %v", err)
	}

	ref, ok := refs[in.PrevHash]
	if !ok {
		return spend{}, signerErr("missing reference transaction %s", in.PrevHash)
	}
	prev, ok := ref.Output(in.PrevIndex)
	if !ok {
		return spend{}, signerErr("reference transaction %s has no output %d", in.PrevHash, in.PrevIndex)
	}
	if prev.Amount != amount {
		return spend{}, signerErr("amount %d does not match reference output %d", amount, prev.Amount)
	}

	key, err := master.DerivePath(in.AddressN)
	if err != nil {
		return spend{}, signerErr("derive key: %v", err)
	}
	addr, err := key.Address(at, params)
	if err != nil {
		return spend{}, signerErr("address: %v", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return spend{}, signerErr("script: %v", err)
	}
	if !strings.EqualFold(prev.ScriptPubKey, hex.EncodeToString(pkScript)) {
		return spend{}, signerErr("output %s:%d is not paid to %s", in.PrevHash, in.PrevIndex, addr.EncodeAddress())
	}

	return spend{
		key:      key,
		addrType: at,
		prevOut:  wire.NewTxOut(int64(amount), pkScript),
	}, nil
}

// outputScript decodes the destination address and checks that it agrees
// with the output's script type.
func outputScript(params *chaincfg.Params, out tx.Output) (*wire.TxOut, error) {
	want, err := out.ScriptType.AddressType()
	if err != nil || !strings.HasPrefix(string(out.ScriptType), string(types.RoleOutput)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, out.ScriptType)
	}
	amount, err := out.Satoshis()
	if err != nil {
		return nil, signerErr("amount: %v", err)
	}

	addr, err := btcutil.DecodeAddress(out.Address, params)
	if err != nil || !addr.IsForNet(params) {
		return nil, signerErr("invalid address %q", out.Address)
	}
	var got types.AddressType
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		got = types.Legacy
	case *btcutil.AddressScriptHash:
		got = types.P2SHSegwit
	case *btcutil.AddressWitnessPubKeyHash:
		got = types.Segwit
	default:
		return nil, fmt.Errorf("%w: address %s", ErrUnsupportedScript, out.Address)
	}
	if got != want {
		return nil, signerErr("address %s is %s, script type says %s", out.Address, got, want)
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, signerErr("script: %v", err)
	}
	return wire.NewTxOut(int64(amount), pkScript), nil
}

// signInput fills in the scriptSig and witness of input idx and returns the
// DER signature.
func signInput(msgTx *wire.MsgTx, sigHashes *txscript.TxSigHashes, idx int, sp spend, params *chaincfg.Params) ([]byte, error) {
	priv, err := sp.key.PrivateKey()
	if err != nil {
		return nil, err
	}
	txIn := msgTx.TxIn[idx]

	switch sp.addrType {
	case types.Legacy:
		sigScript, err := txscript.SignatureScript(msgTx, idx, sp.prevOut.PkScript, txscript.SigHashAll, priv, true)
		if err != nil {
			return nil, err
		}
		txIn.SignatureScript = sigScript
		pushes, err := txscript.PushedData(sigScript)
		if err != nil || len(pushes) == 0 {
			return nil, fmt.Errorf("unexpected signature script")
		}
		return pushes[0][:len(pushes[0])-1], nil

	case types.Segwit, types.P2SHSegwit:
		subscript := sp.prevOut.PkScript
		if sp.addrType == types.P2SHSegwit {
			program, err := witnessProgram(btcutil.Hash160(sp.key.PublicKeyBytes()), params)
			if err != nil {
				return nil, err
			}
			sigScript, err := txscript.NewScriptBuilder().AddData(program).Script()
			if err != nil {
				return nil, err
			}
			txIn.SignatureScript = sigScript
			subscript = program
		}
		witness, err := txscript.WitnessSignature(msgTx, sigHashes, idx, sp.prevOut.Value, subscript, txscript.SigHashAll, priv, true)
		if err != nil {
			return nil, err
		}
		txIn.Witness = witness
		return witness[0][:len(witness[0])-1], nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, sp.addrType)
	}
}
