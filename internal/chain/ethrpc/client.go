// Package ethrpc implements the chain client over Ethereum JSON-RPC against
// a node that manages the bot's account (eth_sendTransaction).
package ethrpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/model"
)

// Config carries everything the RPC client needs.
type Config struct {
	RPCURL        string // network the contract lives on
	MainnetRPCURL string // Ethereum mainnet, for ENS lookups
	Contract      model.Address
	Account       model.Address // node-managed account submitting writes
	HTTPClient    *http.Client
	Log           *zap.Logger
}

// Client talks JSON-RPC to the configured node.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

var _ chain.Client = (*Client)(nil)

// New constructs a Client. A nil HTTPClient gets a 30s-timeout default.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, http: hc, log: log}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC request against url and decodes the result.
func (c *Client) call(ctx context.Context, url, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", method, err)
	}
	var rr rpcResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rr.Error.Code, rr.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// callMsg is the eth_call / eth_sendTransaction parameter object.
type callMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// Simulate dry-runs the entry point via eth_call from the bot account and
// returns the prepared call plus the raw return value.
func (c *Client) Simulate(ctx context.Context, entry chain.EntryPoint, args ...any) (chain.PreparedCall, []byte, error) {
	data, err := c.encodeEntry(entry, args...)
	if err != nil {
		return chain.PreparedCall{}, nil, err
	}
	msg := callMsg{From: string(c.cfg.Account), To: string(c.cfg.Contract), Data: hexEncode(data)}
	var ret string
	if err := c.call(ctx, c.cfg.RPCURL, "eth_call", []any{msg, "latest"}, &ret); err != nil {
		return chain.PreparedCall{}, nil, err
	}
	raw, err := hexDecode(ret)
	if err != nil {
		return chain.PreparedCall{}, nil, fmt.Errorf("eth_call result: %w", err)
	}
	call := chain.PreparedCall{From: c.cfg.Account, To: c.cfg.Contract, Data: data}
	return call, raw, nil
}

// Write submits the prepared call via eth_sendTransaction; the node signs
// with its managed account.
func (c *Client) Write(ctx context.Context, call chain.PreparedCall) (chain.TxRef, error) {
	msg := callMsg{From: string(call.From), To: string(call.To), Data: hexEncode(call.Data)}
	var hash string
	if err := c.call(ctx, c.cfg.RPCURL, "eth_sendTransaction", []any{msg}, &hash); err != nil {
		return "", err
	}
	return chain.TxRef(hash), nil
}

// Read performs a view call against the contract.
func (c *Client) Read(ctx context.Context, entry chain.EntryPoint, args ...any) ([]byte, error) {
	data, err := c.encodeEntry(entry, args...)
	if err != nil {
		return nil, err
	}
	msg := callMsg{To: string(c.cfg.Contract), Data: hexEncode(data)}
	var ret string
	if err := c.call(ctx, c.cfg.RPCURL, "eth_call", []any{msg, "latest"}, &ret); err != nil {
		return nil, err
	}
	return hexDecode(ret)
}

type rpcReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"`
}

// WaitForConfirmation polls eth_getTransactionReceipt with backoff until the
// transaction is mined or the context expires.
func (c *Client) WaitForConfirmation(ctx context.Context, ref chain.TxRef) (chain.Receipt, error) {
	var rcpt *rpcReceipt
	backoff := retry.WithMaxDuration(3*time.Minute, retry.NewFibonacci(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var r *rpcReceipt
		if err := c.call(ctx, c.cfg.RPCURL, "eth_getTransactionReceipt", []any{string(ref)}, &r); err != nil {
			return retry.RetryableError(err)
		}
		if r == nil {
			return retry.RetryableError(fmt.Errorf("tx %s not yet mined", ref))
		}
		rcpt = r
		return nil
	})
	if err != nil {
		return chain.Receipt{}, err
	}
	block, err := hexQuantity(rcpt.BlockNumber)
	if err != nil {
		return chain.Receipt{}, fmt.Errorf("receipt block number: %w", err)
	}
	return chain.Receipt{
		TxRef:       chain.TxRef(rcpt.TransactionHash),
		BlockNumber: block,
		Reverted:    rcpt.Status == "0x0",
	}, nil
}

func (c *Client) encodeEntry(entry chain.EntryPoint, args ...any) ([]byte, error) {
	sig, ok := signatures[entry]
	if !ok {
		return nil, fmt.Errorf("unknown entry point %q", entry)
	}
	return encodeCall(sig, args...)
}

func hexEncode(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func hexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// hexQuantity parses a 0x-prefixed JSON-RPC quantity.
func hexQuantity(s string) (uint64, error) {
	b, err := hexDecode(s)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}
