package ledger

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/curvectl/internal/cli/connection"
	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/core/service"
	"github.com/yndnr/curvectl/internal/telemetry/logger"
)

// DefaultProgramID is the deployed curve program.
const DefaultProgramID = "ApRXrsZcqKHzQFrdYYKcPhe66S5oHMwWqnC9DZVqiZFM"

// Seeds are the PDA seed prefixes of the curve program.
type Seeds struct {
	Config       string `koanf:"config" yaml:"config"`
	Global       string `koanf:"global" yaml:"global"`
	BondingCurve string `koanf:"bonding_curve" yaml:"bonding_curve"`
	Whitelist    string `koanf:"whitelist" yaml:"whitelist"`
}

// DefaultSeeds returns the seed prefixes the program is built with.
func DefaultSeeds() Seeds {
	return Seeds{
		Config:       "config",
		Global:       "global",
		BondingCurve: "bonding_curve",
		Whitelist:    "wl-seed",
	}
}

// Settings are the program parameters shared by every session.
type Settings struct {
	ProgramID domain.PublicKey
	Seeds     Seeds
	// Project is the config written by configure. Zero authority fields
	// are filled with the signer.
	Project ProgramConfig
	Launch  LaunchArgs
	// MigrateNonce is the AMM nonce passed to migrate.
	MigrateNonce uint8
}

// DefaultSettings returns Settings for the deployed program.
func DefaultSettings() Settings {
	return Settings{
		ProgramID: mustKey(DefaultProgramID),
		Seeds:     DefaultSeeds(),
		Project: ProgramConfig{
			LamportAmountConfig: RangeOfU64(nil, nil),
			TokenSupplyConfig:   RangeOfU64(nil, nil),
			TokenDecimalsConfig: RangeOfU8(nil, nil),
		},
		Launch: LaunchArgs{Decimals: 6},
	}
}

// Connector opens ledger sessions. It implements service.Connector.
type Connector struct {
	clients   *connection.Manager
	submitter Submitter
	settings  Settings
}

// NewConnector creates a Connector. Instructions built by its sessions go
// to submitter.
func NewConnector(clients *connection.Manager, submitter Submitter, settings Settings) *Connector {
	return &Connector{
		clients:   clients,
		submitter: submitter,
		settings:  settings,
	}
}

var _ service.Connector = (*Connector)(nil)

// Connect maps the cluster context to an RPC endpoint, loads the signer
// and checks that the node is healthy.
func (c *Connector) Connect(ctx context.Context, cc domain.ClusterContext) (service.Operations, error) {
	endpoint, ok := connection.ResolveEndpoint(cc.Cluster.String(), cc.RPCURL)
	if !ok {
		return nil, domain.ErrNoEndpoint.WithDetails(fmt.Sprintf("cluster %q, rpc %q", cc.Cluster, cc.RPCURL))
	}

	signer, err := LoadKeypair(cc.KeypairPath)
	if err != nil {
		return nil, domain.ErrKeypairInvalid.Wrap(err)
	}

	client := c.clients.Client(endpoint)
	if err := client.GetHealth(ctx); err != nil {
		return nil, domain.ErrRPCUnreachable.Wrap(fmt.Errorf("%s: %w", endpoint, err))
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
	}

	logger.L(ctx).Debug("ledger session opened",
		"endpoint", endpoint,
		"signer", signer.Public.String(),
		"program_id", c.settings.ProgramID.String(),
	)

	return &Session{
		requestID: requestID,
		cluster:   cc.Cluster,
		endpoint:  endpoint,
		rpc:       client,
		signer:    signer,
		settings:  c.settings,
		submitter: c.submitter,
	}, nil
}
