package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int64
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client is a minimal Solana JSON-RPC client.
type Client struct {
	rpcURL     string
	network    Network
	httpClient *http.Client
	nextID     atomic.Uint64
}

// NewClient creates a client; an empty rpcURL selects the cluster's public endpoint.
func NewClient(network Network, rpcURL string) *Client {
	if rpcURL == "" {
		rpcURL = DefaultRPC(network)
	}
	return &Client{
		rpcURL:  rpcURL,
		network: network,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *Client) Network() Network {
	return c.network
}

func (c *Client) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      c.nextID.Add(1),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("rpc %s: %s - %s", method, resp.Status, truncate(raw, 256))
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("rpc %s: invalid json response", method)
	}

	doc := gjson.ParseBytes(raw)
	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		return gjson.Result{}, &RPCError{Code: e.Get("code").Int(), Message: e.Get("message").String()}
	}
	return doc.Get("result"), nil
}

// GetBalance returns the lamport balance of address.
func (c *Client) GetBalance(ctx context.Context, address string) (int64, error) {
	res, err := c.call(ctx, "getBalance", address, map[string]string{"commitment": "confirmed"})
	if err != nil {
		return 0, err
	}
	return res.Get("value").Int(), nil
}

// GetTransaction fetches a confirmed transaction in jsonParsed encoding.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*ParsedTransaction, error) {
	res, err := c.call(ctx, "getTransaction", signature, map[string]any{
		"encoding":                       "jsonParsed",
		"commitment":                     "confirmed",
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return nil, err
	}
	if !res.Exists() || res.Type == gjson.Null {
		return nil, ErrTransactionNotFound
	}
	tx := ParseTransaction(res)
	tx.Signature = signature
	return tx, nil
}

// WaitForTransaction polls GetTransaction until the transaction is visible,
// ctx is done, or timeout elapses.
func (c *Client) WaitForTransaction(ctx context.Context, signature string, timeout, interval time.Duration) (*ParsedTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		tx, err := c.GetTransaction(ctx, signature)
		if err == nil {
			return tx, nil
		}
		if ctx.Err() != nil {
			return nil, ErrTransactionNotFound
		}
		if !errors.Is(err, ErrTransactionNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ErrTransactionNotFound
		case <-ticker.C:
		}
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
