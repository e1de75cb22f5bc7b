package connection

import (
	"net"
	"strings"
	"sync"
)

// Public RPC endpoints of the well-known clusters.
var publicEndpoints = map[string]string{
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
	"testnet":      "https://api.testnet.solana.com",
	"devnet":       "https://api.devnet.solana.com",
}

// PublicEndpoint returns the public RPC URL of cluster.
func PublicEndpoint(cluster string) (string, bool) {
	ep, ok := publicEndpoints[cluster]
	return ep, ok
}

// ResolveEndpoint maps the resolved RPC input of an invocation to a URL.
// An http(s) URL is used verbatim and a host:port gets an http scheme.
// Anything else, such as the DevNetRPC placeholder, names no endpoint and
// falls back to the cluster's public one. ok is false when no endpoint
// can be determined.
func ResolveEndpoint(cluster, rpc string) (endpoint string, ok bool) {
	switch {
	case strings.HasPrefix(rpc, "http://"), strings.HasPrefix(rpc, "https://"):
		return rpc, true
	case isHostPort(rpc):
		return "http://" + rpc, true
	}
	return PublicEndpoint(cluster)
}

func isHostPort(s string) bool {
	host, port, err := net.SplitHostPort(s)
	return err == nil && host != "" && port != "" && !strings.ContainsAny(s, " /")
}

// Manager hands out one client per endpoint, all sharing the same options.
type Manager struct {
	mu      sync.Mutex
	opts    []Option
	clients map[string]*HTTPClient
}

// NewManager creates a manager whose clients are built with opts.
func NewManager(opts ...Option) *Manager {
	return &Manager{
		opts:    opts,
		clients: make(map[string]*HTTPClient),
	}
}

// Client returns the client for endpoint, creating it on first use.
func (m *Manager) Client(endpoint string) *HTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[endpoint]; ok {
		return c
	}
	c := NewHTTPClient(endpoint, m.opts...)
	m.clients[endpoint] = c
	return c
}
