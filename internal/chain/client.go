// Package chain provides the JSON-RPC client for the ledger gateway.
package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/R3E-Network/wallet-fleet/internal/wallet"
)

// Client talks to the ledger gateway over JSON-RPC. All balance, transfer,
// key-registration, fee and price operations of the fleet go through it.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// NewClient creates a new gateway client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Call makes an RPC call to the gateway.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// GetBalance returns the confirmed balance of an address in 1e-8 native units.
func (c *Client) GetBalance(ctx context.Context, address string) (int64, error) {
	result, err := c.Call(ctx, "getbalance", []interface{}{address})
	if err != nil {
		return 0, err
	}

	var res balanceResult
	if err := json.Unmarshal(result, &res); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	return res.Balance, nil
}

// Transfer submits a signed transfer from the given account and returns the
// transaction id. It does not wait for confirmation.
func (c *Client) Transfer(ctx context.Context, from wallet.Account, to string, amount int64) (string, error) {
	payload := transferRequest{
		From:      from.Address,
		To:        to,
		Amount:    amount,
		PublicKey: hex.EncodeToString(from.PublicKey()),
	}
	payload.Signature = hex.EncodeToString(from.Sign(transferDigest(payload)))

	result, err := c.Call(ctx, "transfer", []interface{}{payload})
	if err != nil {
		return "", err
	}

	var res txResult
	if err := json.Unmarshal(result, &res); err != nil {
		return "", fmt.Errorf("decode transfer result: %w", err)
	}
	return res.TxID, nil
}

// IsActivated reports whether the address has a signing key registered.
func (c *Client) IsActivated(ctx context.Context, address string) (bool, error) {
	result, err := c.Call(ctx, "iskeyregistered", []interface{}{address})
	if err != nil {
		return false, err
	}

	var active bool
	if err := json.Unmarshal(result, &active); err != nil {
		return false, fmt.Errorf("decode activation state: %w", err)
	}
	return active, nil
}

// Activate submits a signing-key registration for the account.
func (c *Client) Activate(ctx context.Context, acct wallet.Account) error {
	payload := registerKeyRequest{
		Address:   acct.Address,
		PublicKey: hex.EncodeToString(acct.PublicKey()),
	}
	payload.Signature = hex.EncodeToString(acct.Sign([]byte(payload.Address + "|" + payload.PublicKey)))

	result, err := c.Call(ctx, "registerkey", []interface{}{payload})
	if err != nil {
		return err
	}

	var res txResult
	if err := json.Unmarshal(result, &res); err != nil {
		return fmt.Errorf("decode registration result: %w", err)
	}
	return nil
}

// ActivationFee returns the current key-registration fee in 1e-8 native units.
func (c *Client) ActivationFee(ctx context.Context) (int64, error) {
	result, err := c.Call(ctx, "getregistrationfee", nil)
	if err != nil {
		return 0, err
	}

	var res feeResult
	if err := json.Unmarshal(result, &res); err != nil {
		return 0, fmt.Errorf("decode fee: %w", err)
	}
	return res.Fee, nil
}

// Price returns the current quote for the token in USD.
func (c *Client) Price(ctx context.Context, token string) (decimal.Decimal, error) {
	result, err := c.Call(ctx, "getprice", []interface{}{token})
	if err != nil {
		return decimal.Zero, err
	}

	var res priceResult
	if err := json.Unmarshal(result, &res); err != nil {
		return decimal.Zero, fmt.Errorf("decode price: %w", err)
	}

	price, err := decimal.NewFromString(res.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", res.Price, err)
	}
	return price, nil
}

// transferDigest is the canonical byte form the gateway verifies the
// transfer signature against.
func transferDigest(p transferRequest) []byte {
	return []byte(fmt.Sprintf("%s|%s|%d", p.From, p.To, p.Amount))
}
