package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// rpcServer answers JSON-RPC calls with the result registered for the
// method and records the requests it saw.
type rpcServer struct {
	mu       sync.Mutex
	requests []rpcRequest
	results  map[string]string
	status   int
}

func newRPCServer(t *testing.T, results map[string]string) (*rpcServer, *httptest.Server) {
	t.Helper()
	s := &rpcServer{results: results, status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		body, ok := s.results[req.Method]
		status := s.status
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if !ok {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + body + `}`))
	}))
	t.Cleanup(srv.Close)
	return s, srv
}

type countingObserver struct {
	mu    sync.Mutex
	calls map[string]int
}

func (o *countingObserver) RPCCall(method, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = make(map[string]int)
	}
	o.calls[method+"/"+result]++
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:8899", "http://localhost:8899"},
		{"with https prefix", "https://api.devnet.solana.com", "https://api.devnet.solana.com"},
		{"without prefix", "localhost:8899", "http://localhost:8899"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewHTTPClient(tt.endpoint).BaseURL(); got != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestHTTPClient_GetHealth(t *testing.T) {
	s, srv := newRPCServer(t, map[string]string{"getHealth": `"ok"`})

	if err := NewHTTPClient(srv.URL).GetHealth(context.Background()); err != nil {
		t.Fatalf("GetHealth() error = %v", err)
	}
	if len(s.requests) != 1 || s.requests[0].Method != "getHealth" || s.requests[0].JSONRPC != "2.0" {
		t.Errorf("requests = %+v", s.requests)
	}
}

func TestHTTPClient_GetHealth_Unhealthy(t *testing.T) {
	_, srv := newRPCServer(t, map[string]string{"getHealth": `"behind"`})

	if err := NewHTTPClient(srv.URL).GetHealth(context.Background()); err == nil {
		t.Error("GetHealth() should fail when node is behind")
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	_, srv := newRPCServer(t, nil)

	err := NewHTTPClient(srv.URL).GetHealth(context.Background())
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error = %v, want *RPCError", err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("Code = %d, want -32601", rpcErr.Code)
	}
}

func TestHTTPClient_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL).GetHealth(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want status 503", err)
	}
}

func TestHTTPClient_GetAccountInfo(t *testing.T) {
	s, srv := newRPCServer(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":{"data":["AQID","base64"],"executable":false,"lamports":1461600,"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","rentEpoch":0,"space":82}}`,
	})

	info, err := NewHTTPClient(srv.URL).GetAccountInfo(context.Background(), "5j4uB4mDPPCULa2k1ghWwpafQgBKPGqvKzQyvH3w927R")
	if err != nil {
		t.Fatalf("GetAccountInfo() error = %v", err)
	}
	if info == nil || info.Space != 82 || info.Owner != "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA" {
		t.Errorf("info = %+v", info)
	}
	if len(info.Data) != 2 || info.Data[1] != "base64" {
		t.Errorf("Data = %v", info.Data)
	}

	params := s.requests[0].Params
	if len(params) != 2 || params[0] != "5j4uB4mDPPCULa2k1ghWwpafQgBKPGqvKzQyvH3w927R" {
		t.Errorf("params = %v", params)
	}
}

func TestHTTPClient_GetAccountInfo_Missing(t *testing.T) {
	_, srv := newRPCServer(t, map[string]string{"getAccountInfo": `{"context":{"slot":1},"value":null}`})

	info, err := NewHTTPClient(srv.URL).GetAccountInfo(context.Background(), "11111111111111111111111111111111")
	if err != nil {
		t.Fatalf("GetAccountInfo() error = %v", err)
	}
	if info != nil {
		t.Errorf("info = %+v, want nil for a missing account", info)
	}
}

func TestHTTPClient_UnexpectedResult(t *testing.T) {
	_, srv := newRPCServer(t, map[string]string{"getHealth": `{"not":"a string"}`})

	err := NewHTTPClient(srv.URL).GetHealth(context.Background())
	if !errors.Is(err, ErrUnexpectedResult) {
		t.Errorf("error = %v, want ErrUnexpectedResult", err)
	}
}

func TestHTTPClient_Observer(t *testing.T) {
	_, srv := newRPCServer(t, map[string]string{"getHealth": `"ok"`})
	obs := &countingObserver{}
	c := NewHTTPClient(srv.URL, WithObserver(obs))

	c.GetHealth(context.Background())
	c.GetAccountInfo(context.Background(), "11111111111111111111111111111111")

	if obs.calls["getHealth/ok"] != 1 || obs.calls["getAccountInfo/error"] != 1 {
		t.Errorf("observer calls = %v", obs.calls)
	}
}

func TestHTTPClient_RateLimit(t *testing.T) {
	_, srv := newRPCServer(t, map[string]string{"getHealth": `"ok"`})
	c := NewHTTPClient(srv.URL, WithRateLimit(1))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := c.GetHealth(ctx); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if err := c.GetHealth(ctx); err == nil {
		t.Error("second call within the same second should hit the rate limit deadline")
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithTimeout(20*time.Millisecond))
	if err := c.GetHealth(context.Background()); err == nil {
		t.Error("GetHealth() should time out")
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	_, srv := newRPCServer(t, map[string]string{"getHealth": `"ok"`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewHTTPClient(srv.URL).GetHealth(ctx); err == nil {
		t.Error("GetHealth() should fail on cancelled context")
	}
}
