package service

import "github.com/yndnr/curvectl/internal/core/domain"

// Resolve merges the raw shared inputs of one invocation into a
// ClusterContext. Empty inputs take their defaults. Cluster names outside
// the known set are kept verbatim; the ledger decides whether it can
// reach them.
//
// Resolve has no side effects and always returns a complete context.
func Resolve(env, keypairPath, rpcURL string) domain.ClusterContext {
	cc := domain.DefaultClusterContext()
	if env != "" {
		cc.Cluster = domain.ClusterName(env)
	}
	if keypairPath != "" {
		cc.KeypairPath = keypairPath
	}
	if rpcURL != "" {
		cc.RPCURL = rpcURL
	}
	return cc
}
