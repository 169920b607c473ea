package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/R3E-Network/wallet-fleet/internal/wallet"
)

func newTestServer(t *testing.T, handler func(req RPCRequest) (interface{}, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		result, rpcErr := handler(req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGetBalance(t *testing.T) {
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		if req.Method != "getbalance" {
			t.Errorf("unexpected method %s", req.Method)
		}
		if len(req.Params) != 1 || req.Params[0] != "NAddr" {
			t.Errorf("unexpected params %v", req.Params)
		}
		return balanceResult{Balance: 30000000}, nil
	})
	defer srv.Close()

	client, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	bal, err := client.GetBalance(context.Background(), "NAddr")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 30000000 {
		t.Fatalf("expected 30000000, got %d", bal)
	}
}

func TestTransferSignsPayload(t *testing.T) {
	var f wallet.Factory
	_, secret, address, err := f.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	from, err := f.Derive(secret)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		if req.Method != "transfer" {
			t.Errorf("unexpected method %s", req.Method)
		}
		raw, _ := json.Marshal(req.Params[0])
		var p transferRequest
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if p.From != address || p.To != "NDest" || p.Amount != 42 {
			t.Errorf("unexpected payload %+v", p)
		}
		if p.Signature == "" || p.PublicKey == "" {
			t.Errorf("payload not signed: %+v", p)
		}
		return txResult{TxID: "0xabc"}, nil
	})
	defer srv.Close()

	client, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	txid, err := client.Transfer(context.Background(), from, "NDest", 42)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if txid != "0xabc" {
		t.Fatalf("expected txid 0xabc, got %s", txid)
	}
}

func TestRPCErrorSurfaces(t *testing.T) {
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -32000, Message: "insufficient funds"}
	})
	defer srv.Close()

	client, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.GetBalance(context.Background(), "NAddr"); err == nil {
		t.Fatal("expected rpc error")
	}
}

func TestPriceParsesDecimal(t *testing.T) {
	srv := newTestServer(t, func(req RPCRequest) (interface{}, *RPCError) {
		return priceResult{Price: "2000.50"}, nil
	})
	defer srv.Close()

	client, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	price, err := client.Price(context.Background(), "GAS")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price.String() != "2000.5" {
		t.Fatalf("expected 2000.5, got %s", price)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty RPC URL")
	}
}
