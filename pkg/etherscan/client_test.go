package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pendergraft/evmscan/pkg/eth"
)

const testAddr = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

func mustAddr(t *testing.T, s string) eth.Address {
	t.Helper()
	addr, err := eth.NewAddress(s)
	if err != nil {
		t.Fatalf("NewAddress(%q) error = %v", s, err)
	}
	return addr
}

func TestClient_GetSourceCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "contract" {
			t.Errorf("Expected module contract, got %s", q.Get("module"))
		}
		if q.Get("action") != "getsourcecode" {
			t.Errorf("Expected action getsourcecode, got %s", q.Get("action"))
		}
		if q.Get("address") != testAddr {
			t.Errorf("Expected address %s, got %s", testAddr, q.Get("address"))
		}
		if q.Get("apikey") != "test-key" {
			t.Errorf("Expected apikey test-key, got %s", q.Get("apikey"))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "1",
			"message": "OK",
			"result": []map[string]string{
				{
					"SourceCode":           "contract Foo {}",
					"ConstructorArguments": "",
					"ContractName":         "Foo",
				},
			},
		})
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	resp, err := client.GetSourceCode(context.Background(), mustAddr(t, testAddr))
	if err != nil {
		t.Fatalf("GetSourceCode() error = %v", err)
	}

	if !resp.IsOK() {
		t.Errorf("IsOK() = false for status %q", resp.Status)
	}
	if len(resp.Result) != 1 {
		t.Fatalf("GetSourceCode() returned %d entries, want 1", len(resp.Result))
	}
	if resp.Result[0].ContractName != "Foo" {
		t.Errorf("ContractName = %s, want Foo", resp.Result[0].ContractName)
	}
	if resp.Result[0].Source != "contract Foo {}" {
		t.Errorf("Source = %q, want the contract text", resp.Result[0].Source)
	}
}

func TestClient_GetABI(t *testing.T) {
	const abiJSON = `[{"type":"function","name":"transfer"}]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if action := r.URL.Query().Get("action"); action != "getabi" {
			t.Errorf("Expected action getabi, got %s", action)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":  "1",
			"message": "OK",
			"result":  abiJSON,
		})
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	abi, err := client.GetABI(context.Background(), mustAddr(t, testAddr))
	if err != nil {
		t.Fatalf("GetABI() error = %v", err)
	}

	if abi.String() != abiJSON {
		t.Errorf("GetABI() = %q, want %q", abi, abiJSON)
	}
}

func TestClient_GetABI_NotVerified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "0",
			"message": "NOTOK",
			"result":  "Contract source code not verified",
		})
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	_, err := client.GetABI(context.Background(), mustAddr(t, testAddr))
	if err == nil {
		t.Fatal("Expected error for status 0 getabi reply")
	}
	if !strings.Contains(err.Error(), "not verified") {
		t.Errorf("error %q does not carry the explorer's explanation", err)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":`))
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	addr := mustAddr(t, testAddr)

	if _, err := client.GetSourceCode(context.Background(), addr); !errors.Is(err, ErrJSON) {
		t.Errorf("GetSourceCode() error = %v, want ErrJSON", err)
	}
	if _, err := client.GetABI(context.Background(), addr); !errors.Is(err, ErrJSON) {
		t.Errorf("GetABI() error = %v, want ErrJSON", err)
	}
}

func TestClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := New("test-key", WithBaseURL(server.URL))
	addr := mustAddr(t, testAddr)

	if _, err := client.GetSourceCode(context.Background(), addr); !errors.Is(err, ErrHTTP) {
		t.Errorf("GetSourceCode() error = %v, want ErrHTTP", err)
	}
	if _, err := client.GetABI(context.Background(), addr); !errors.Is(err, ErrHTTP) {
		t.Errorf("GetABI() error = %v, want ErrHTTP", err)
	}
}

func TestClient_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	_, err := client.GetSourceCode(context.Background(), mustAddr(t, testAddr))
	if !errors.Is(err, ErrHTTP) {
		t.Errorf("GetSourceCode() error = %v, want ErrHTTP", err)
	}
	if strings.Contains(err.Error(), "apikey") {
		t.Errorf("error %q leaks the request URL", err)
	}
}

func TestClient_ProxyReads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "proxy" {
			t.Errorf("Expected module proxy, got %s", q.Get("module"))
		}
		if q.Get("tag") != "latest" {
			t.Errorf("Expected tag latest, got %s", q.Get("tag"))
		}

		var result string
		switch q.Get("action") {
		case "eth_getBalance":
			result = "0x2faf08000" // 12_800_000_000
		case "eth_getTransactionCount":
			result = "0x10"
		case "eth_getCode":
			result = "0x6080"
		default:
			t.Errorf("Unexpected action %s", q.Get("action"))
		}
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result})
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	addr := mustAddr(t, testAddr)
	ctx := context.Background()

	balance, err := client.GetBalance(ctx, addr)
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if balance != 12_800_000_000 {
		t.Errorf("GetBalance() = %d, want 12800000000", balance)
	}

	nonce, err := client.GetTransactionCount(ctx, addr)
	if err != nil {
		t.Fatalf("GetTransactionCount() error = %v", err)
	}
	if nonce != 16 {
		t.Errorf("GetTransactionCount() = %d, want 16", nonce)
	}

	code, err := client.GetCode(ctx, addr)
	if err != nil {
		t.Fatalf("GetCode() error = %v", err)
	}
	if len(code) != 2 || code[0] != 0x60 || code[1] != 0x80 {
		t.Errorf("GetCode() = %x, want 6080", code)
	}
}

func TestClient_ProxyInvalidQuantity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": "0xnothex"})
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	_, err := client.GetBalance(context.Background(), mustAddr(t, testAddr))
	if !errors.Is(err, ErrJSON) {
		t.Errorf("GetBalance() error = %v, want ErrJSON", err)
	}
}

func TestClient_ProxyRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32602, "message": "invalid argument"},
		})
	}))
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	_, err := client.GetCode(context.Background(), mustAddr(t, testAddr))
	if err == nil {
		t.Fatal("Expected error for JSON-RPC error reply")
	}
	if !strings.Contains(err.Error(), "invalid argument") {
		t.Errorf("error %q does not carry the RPC message", err)
	}
}

// explorerStub serves both the proxy and contract modules for assembly tests.
func explorerStub(t *testing.T, code string, verified bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "eth_getBalance":
			json.NewEncoder(w).Encode(map[string]any{"result": "0x2faf0800"}) // 800_000_000
		case "eth_getTransactionCount":
			json.NewEncoder(w).Encode(map[string]any{"result": "0x1"})
		case "eth_getCode":
			json.NewEncoder(w).Encode(map[string]any{"result": code})
		case "getsourcecode":
			entry := map[string]string{"SourceCode": "", "ConstructorArguments": "", "ContractName": ""}
			if verified {
				entry = map[string]string{
					"SourceCode":           "contract Foo {}",
					"ConstructorArguments": "",
					"ContractName":         "Foo",
				}
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status": "1", "message": "OK", "result": []map[string]string{entry},
			})
		case "getabi":
			if verified {
				json.NewEncoder(w).Encode(map[string]string{
					"status": "1", "message": "OK", "result": `[{"type":"fallback"}]`,
				})
			} else {
				json.NewEncoder(w).Encode(map[string]string{
					"status": "0", "message": "NOTOK", "result": "Contract source code not verified",
				})
			}
		default:
			t.Errorf("Unexpected action %s", q.Get("action"))
		}
	}))
}

func TestClient_GetAccount(t *testing.T) {
	server := explorerStub(t, "0x", false)
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	account, err := client.GetAccount(context.Background(), mustAddr(t, testAddr))
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}

	if !account.IsEOA() {
		t.Error("IsEOA() = false for empty code")
	}
	if account.Nonce() != 1 {
		t.Errorf("Nonce() = %d, want 1", account.Nonce())
	}
	want := "EOA @ " + testAddr + " (8 ETH)"
	if account.String() != want {
		t.Errorf("String() = %q, want %q", account, want)
	}
}

func TestClient_GetContract(t *testing.T) {
	server := explorerStub(t, "0x6080", true)
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	contract, err := client.GetContract(context.Background(), mustAddr(t, testAddr))
	if err != nil {
		t.Fatalf("GetContract() error = %v", err)
	}

	if contract.Bytecode() != "0x6080" {
		t.Errorf("Bytecode() = %q, want 0x6080", contract.Bytecode())
	}
	if name, ok := contract.Name(); !ok || name != "Foo" {
		t.Errorf("Name() = %q, %v, want Foo, true", name, ok)
	}
	if abi, ok := contract.ABI(); !ok || abi != `[{"type":"fallback"}]` {
		t.Errorf("ABI() = %q, %v", abi, ok)
	}
	if source, ok := contract.Source(); !ok || source != "contract Foo {}" {
		t.Errorf("Source() = %q, %v", source, ok)
	}
}

func TestClient_GetContract_Unverified(t *testing.T) {
	server := explorerStub(t, "0x6080", false)
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	contract, err := client.GetContract(context.Background(), mustAddr(t, testAddr))
	if err != nil {
		t.Fatalf("GetContract() error = %v", err)
	}

	// A contract with no verified metadata still resolves; everything
	// optional stays absent.
	if _, ok := contract.Name(); ok {
		t.Error("Name() present for unverified contract")
	}
	if _, ok := contract.ABI(); ok {
		t.Error("ABI() present for unverified contract")
	}
	if _, ok := contract.Source(); ok {
		t.Error("Source() present for unverified contract")
	}
}

func TestClient_GetContract_EOA(t *testing.T) {
	server := explorerStub(t, "0x", false)
	defer server.Close()

	client := New("test-key", WithBaseURL(server.URL))
	_, err := client.GetContract(context.Background(), mustAddr(t, testAddr))
	if !errors.Is(err, eth.ErrNotAContract) {
		t.Errorf("GetContract() error = %v, want eth.ErrNotAContract", err)
	}
}
