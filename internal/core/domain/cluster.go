package domain

// ClusterName identifies the target Solana cluster.
type ClusterName string

// Known cluster names.
const (
	ClusterMainnetBeta ClusterName = "mainnet-beta"
	ClusterTestnet     ClusterName = "testnet"
	ClusterDevnet      ClusterName = "devnet"
)

// Defaults applied to shared inputs that were not given.
const (
	DefaultCluster     = ClusterDevnet
	DefaultRPCURL      = "DevNetRPC"
	DefaultKeypairPath = "keypairt address"
)

// Clusters lists the known cluster names.
func Clusters() []ClusterName {
	return []ClusterName{ClusterMainnetBeta, ClusterTestnet, ClusterDevnet}
}

// Known reports whether c is one of the known clusters.
func (c ClusterName) Known() bool {
	switch c {
	case ClusterMainnetBeta, ClusterTestnet, ClusterDevnet:
		return true
	}
	return false
}

func (c ClusterName) String() string {
	return string(c)
}

// ClusterContext is the resolved connection context of one invocation.
// All fields are populated once resolution has run; the value is never
// mutated afterwards.
type ClusterContext struct {
	Cluster     ClusterName `json:"cluster" yaml:"cluster"`
	RPCURL      string      `json:"rpc_url" yaml:"rpc_url"`
	KeypairPath string      `json:"keypair_path" yaml:"keypair_path"`
}

// DefaultClusterContext returns the context used when no shared input is given.
func DefaultClusterContext() ClusterContext {
	return ClusterContext{
		Cluster:     DefaultCluster,
		RPCURL:      DefaultRPCURL,
		KeypairPath: DefaultKeypairPath,
	}
}

// Complete reports whether every field is populated.
func (c ClusterContext) Complete() bool {
	return c.Cluster != "" && c.RPCURL != "" && c.KeypairPath != ""
}
