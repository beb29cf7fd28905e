package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/allegro/bigcache/v3"
	"github.com/xsnexplorer/xsn-trezor/pkg/tx"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// GetBalance returns the balance of an address.
func (c *Client) GetBalance(ctx context.Context, address string) (*Balance, error) {
	data, err := c.do(ctx, http.MethodGet, addressPath(address, ""), nil)
	if err != nil {
		return nil, err
	}
	return DecodeBalance(data)
}

// GetUTXOs returns the unspent outputs of an address.
func (c *Client) GetUTXOs(ctx context.Context, address string) ([]types.UTXO, error) {
	data, err := c.do(ctx, http.MethodGet, addressPath(address, "/utxos"), nil)
	if err != nil {
		return nil, err
	}
	return DecodeUTXOs(data)
}

// GetTPoSContracts returns the TPoS contracts owned by an address.
func (c *Client) GetTPoSContracts(ctx context.Context, address string) ([]types.TPoSContract, error) {
	data, err := c.do(ctx, http.MethodGet, addressPath(address, "/tposcontracts"), nil)
	if err != nil {
		return nil, err
	}
	return DecodeContracts(data)
}

// GetRawTransaction returns a transaction in the explorer's raw format.
func (c *Client) GetRawTransaction(ctx context.Context, txid string) (*tx.RawTransaction, error) {
	if err := types.ValidateTxID(txid); err != nil {
		return nil, err
	}

	if c.cache != nil {
		data, err := c.cache.Get(txid)
		if err == nil {
			if raw, err := tx.DecodeRawTransaction(data); err == nil {
				return raw, nil
			}
		} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
			c.logger.Warn().Err(err).Str("txid", txid).Msg("Raw tx cache read failed")
		}
	}

	data, err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(txid)+"/raw", nil)
	if err != nil {
		return nil, err
	}
	raw, err := tx.DecodeRawTransaction(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if raw.TxID != txid {
		return nil, fmt.Errorf("%w: asked for %s, got %s", ErrInvalidResponse, txid, raw.TxID)
	}

	if c.cache != nil {
		if err := c.cache.Set(txid, data); err != nil {
			c.logger.Debug().Err(err).Str("txid", txid).Msg("Raw tx not cached")
		}
	}
	return raw, nil
}

// GetReferenceTransaction fetches txid and translates it for a signer.
func (c *Client) GetReferenceTransaction(ctx context.Context, txid string) (*tx.ReferenceTransaction, error) {
	raw, err := c.GetRawTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}
	ref, err := tx.ToReferenceTransaction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return ref, nil
}

type pushRequest struct {
	Hex string `json:"hex"`
}

// PushTransaction broadcasts a hex-encoded signed transaction and returns
// its txid.
func (c *Client) PushTransaction(ctx context.Context, hexTx string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/transactions", pushRequest{Hex: hexTx})
	if err != nil {
		return "", err
	}
	return DecodePushResult(data)
}
