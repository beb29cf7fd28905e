package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// MainNetParams are the XSN main network address parameters.
var MainNetParams = chaincfg.Params{
	Name:                    "mainnet",
	Net:                     wire.BitcoinNet(0xbd6b0cbf),
	DefaultPort:             "62583",
	PubKeyHashAddrID:        76, // X
	ScriptHashAddrID:        16, // 7
	PrivateKeyID:            204,
	WitnessPubKeyHashAddrID: 0x06,
	WitnessScriptHashAddrID: 0x0a,
	Bech32HRPSegwit:         "xc",
	HDPrivateKeyID:          [4]byte{0x04, 0x88, 0xad, 0xe4},
	HDPublicKeyID:           [4]byte{0x04, 0x88, 0xb2, 0x1e},
	HDCoinType:              199,
}

// TestNetParams are the XSN test network address parameters.
var TestNetParams = chaincfg.Params{
	Name:                    "testnet",
	Net:                     wire.BitcoinNet(0xffcae2ce),
	DefaultPort:             "62584",
	PubKeyHashAddrID:        140, // y
	ScriptHashAddrID:        19,  // 8 or 9
	PrivateKeyID:            239,
	WitnessPubKeyHashAddrID: 0x03,
	WitnessScriptHashAddrID: 0x28,
	Bech32HRPSegwit:         "tx",
	HDPrivateKeyID:          [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:           [4]byte{0x04, 0x35, 0x87, 0xcf},
	HDCoinType:              1,
}

func init() {
	// Registration makes btcutil recognise the bech32 prefixes.
	for _, p := range []*chaincfg.Params{&MainNetParams, &TestNetParams} {
		if err := chaincfg.Register(p); err != nil {
			panic(fmt.Sprintf("register %s params: %v", p.Name, err))
		}
	}
}

// ParamsFor returns the parameters of the named network.
func ParamsFor(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet", "":
		return &MainNetParams, nil
	case "testnet":
		return &TestNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}
