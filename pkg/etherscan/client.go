// Package etherscan provides a client for Etherscan-compatible block
// explorer APIs.
package etherscan

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pendergraft/evmscan/pkg/eth"
)

// DefaultBaseURL is the Etherscan mainnet API endpoint. Explorers for other
// networks in the Etherscan family accept the same queries; point
// WithBaseURL at them.
const DefaultBaseURL = "https://api.etherscan.io/api"

const defaultTimeout = 5 * time.Second

// Failures surfaced by the client. Transport-level problems (connection
// errors, timeouts, non-2xx statuses) wrap ErrHTTP; body-decoding problems
// wrap ErrJSON. Both propagate to the caller unchanged; the client never
// retries.
var (
	ErrHTTP = errors.New("explorer request failed")
	ErrJSON = errors.New("decoding explorer response")
)

// Client queries an Etherscan-compatible explorer API. Its fields are
// immutable after New, so a single Client is safe to share across
// goroutines.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, e.g. for mock transports or
// custom timeout/proxy/TLS policy.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL points the client at a different Etherscan-family explorer.
func WithBaseURL(u string) Option {
	return func(client *Client) {
		client.baseURL = u
	}
}

// New creates a client for the explorer API with the given API key. The
// default HTTP client has a five-second timeout.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetSourceCode fetches the verified source entries for the contract at
// addr. An unverified contract still answers with status "1" and empty
// source fields; interpreting that is the caller's decision.
func (c *Client) GetSourceCode(ctx context.Context, addr eth.Address) (*Response[SourceCode], error) {
	var resp Response[SourceCode]
	if err := c.get(ctx, contractQuery("getsourcecode", addr), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// abiEnvelope is the getabi reply: the shared envelope with a scalar result.
type abiEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// GetABI fetches the ABI of the verified contract at addr. Failures for
// this action arrive in-band as a non-"1" status with the explanation in
// the result field, so they are returned as errors here rather than left to
// the caller.
func (c *Client) GetABI(ctx context.Context, addr eth.Address) (ABI, error) {
	var resp abiEnvelope
	if err := c.get(ctx, contractQuery("getabi", addr), &resp); err != nil {
		return "", err
	}
	if resp.Status != "1" {
		return "", fmt.Errorf("getabi for %s: %s: %s", addr, resp.Message, resp.Result)
	}
	return ABI(resp.Result), nil
}

// GetBalance reads the current balance of addr in wei. Balances beyond
// uint64 range fail with ErrJSON.
func (c *Client) GetBalance(ctx context.Context, addr eth.Address) (uint64, error) {
	return c.proxyQuantity(ctx, "eth_getBalance", addr)
}

// GetTransactionCount reads the current nonce of addr.
func (c *Client) GetTransactionCount(ctx context.Context, addr eth.Address) (uint64, error) {
	return c.proxyQuantity(ctx, "eth_getTransactionCount", addr)
}

// GetCode reads the deployed code at addr. Empty for an EOA.
func (c *Client) GetCode(ctx context.Context, addr eth.Address) ([]byte, error) {
	result, err := c.proxy(ctx, "eth_getCode", addr)
	if err != nil {
		return nil, err
	}

	code, err := hex.DecodeString(strings.TrimPrefix(result, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: code %q: %v", ErrJSON, result, err)
	}
	return code, nil
}

// GetAccount assembles the current on-chain state of addr from the
// explorer's proxy reads.
func (c *Client) GetAccount(ctx context.Context, addr eth.Address) (*eth.Account, error) {
	balance, err := c.GetBalance(ctx, addr)
	if err != nil {
		return nil, err
	}
	nonce, err := c.GetTransactionCount(ctx, addr)
	if err != nil {
		return nil, err
	}
	code, err := c.GetCode(ctx, addr)
	if err != nil {
		return nil, err
	}

	account := eth.NewAccount(addr, nonce, balance, code)
	return &account, nil
}

// GetContract assembles deployed-contract metadata for addr: on-chain state
// plus whatever verified source and ABI the explorer has. Unverified
// contracts still resolve, with name, ABI, and source absent. An address
// with no deployed code fails with eth.ErrNotAContract.
func (c *Client) GetContract(ctx context.Context, addr eth.Address) (*eth.Contract, error) {
	account, err := c.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}

	var opts []eth.ContractOption

	src, err := c.GetSourceCode(ctx, addr)
	if err != nil {
		return nil, err
	}
	if src.IsOK() && len(src.Result) > 0 {
		entry := src.Result[0]
		if entry.ContractName != "" {
			opts = append(opts, eth.WithName(entry.ContractName))
		}
		if entry.Source != "" {
			opts = append(opts, eth.WithSource(entry.Source))
		}
	}

	abi, err := c.GetABI(ctx, addr)
	switch {
	case err == nil:
		opts = append(opts, eth.WithABI(string(abi)))
	case errors.Is(err, ErrHTTP) || errors.Is(err, ErrJSON):
		return nil, err
	}
	// in-band getabi failures (contract not verified) leave the ABI absent

	bytecode := ""
	if code := account.Code(); len(code) > 0 {
		bytecode = "0x" + hex.EncodeToString(code)
	}

	return eth.NewContract(*account, bytecode, opts...)
}

// proxyEnvelope is the reply shape of the proxy module, which relays
// JSON-RPC instead of the status/message envelope.
type proxyEnvelope struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) proxy(ctx context.Context, action string, addr eth.Address) (string, error) {
	var resp proxyEnvelope
	if err := c.get(ctx, proxyQuery(action, addr), &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s for %s: %s", action, addr, resp.Error.Message)
	}
	return resp.Result, nil
}

func (c *Client) proxyQuantity(ctx context.Context, action string, addr eth.Address) (uint64, error) {
	result, err := c.proxy(ctx, action, addr)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseUint(strings.TrimPrefix(result, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q: %v", ErrJSON, result, err)
	}
	return n, nil
}

func contractQuery(action string, addr eth.Address) url.Values {
	return url.Values{
		"module":  {"contract"},
		"action":  {action},
		"address": {addr.String()},
	}
}

func proxyQuery(action string, addr eth.Address) url.Values {
	return url.Values{
		"module":  {"proxy"},
		"action":  {action},
		"address": {addr.String()},
		"tag":     {"latest"},
	}
}

func (c *Client) get(ctx context.Context, query url.Values, result any) error {
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTTP, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTTP, err)
	}
	defer resp.Body.Close()

	// The status text is enough here; the URL carries the apikey and must
	// not leak into error messages.
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: unexpected status %s", ErrHTTP, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", ErrJSON, err)
	}

	return nil
}
