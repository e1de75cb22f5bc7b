package config

import "time"

// CLIConfig is the curvectl profile.
type CLIConfig struct {
	Cluster ClusterConfig `koanf:"cluster" yaml:"cluster"`
	Program ProgramConfig `koanf:"program" yaml:"program"`
	Project ProjectConfig `koanf:"project" yaml:"project"`
	Launch  LaunchConfig  `koanf:"launch" yaml:"launch"`
	Output  string        `koanf:"output" yaml:"output"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Metrics MetricsConfig `koanf:"metrics" yaml:"metrics"`
}

// ClusterConfig holds profile values for the shared inputs and the RPC
// client. Empty shared inputs fall through to the built-in defaults.
type ClusterConfig struct {
	Env     string `koanf:"env" yaml:"env,omitempty"`
	RPC     string `koanf:"rpc" yaml:"rpc,omitempty"`
	Keypair string `koanf:"keypair" yaml:"keypair,omitempty"`

	// RPCCAFile is a PEM bundle, or a directory of them, trusted in
	// addition to the system roots.
	RPCCAFile    string        `koanf:"rpc_ca_file" yaml:"rpc_ca_file,omitempty"`
	RPCRateLimit int           `koanf:"rpc_rate_limit" yaml:"rpc_rate_limit"`
	RPCTimeout   time.Duration `koanf:"rpc_timeout" yaml:"rpc_timeout"`
}

// ProgramConfig locates the curve program.
type ProgramConfig struct {
	ID           string      `koanf:"id" yaml:"id"`
	Seeds        SeedsConfig `koanf:"seeds" yaml:"seeds"`
	MigrateNonce uint8       `koanf:"migrate_nonce" yaml:"migrate_nonce"`
}

// SeedsConfig overrides the PDA seed prefixes.
type SeedsConfig struct {
	Config       string `koanf:"config" yaml:"config"`
	Global       string `koanf:"global" yaml:"global"`
	BondingCurve string `koanf:"bonding_curve" yaml:"bonding_curve"`
	Whitelist    string `koanf:"whitelist" yaml:"whitelist"`
}

// ProjectConfig is the global config written by `curvectl config`.
// Empty addresses default to the signer.
type ProjectConfig struct {
	Authority            string  `koanf:"authority" yaml:"authority,omitempty"`
	PendingAuthority     string  `koanf:"pending_authority" yaml:"pending_authority,omitempty"`
	TeamWallet           string  `koanf:"team_wallet" yaml:"team_wallet,omitempty"`
	GlobalAuthority      string  `koanf:"global_authority" yaml:"global_authority,omitempty"`
	InitBondingCurve     float64 `koanf:"init_bonding_curve" yaml:"init_bonding_curve"`
	PlatformBuyFee       float64 `koanf:"platform_buy_fee" yaml:"platform_buy_fee"`
	PlatformSellFee      float64 `koanf:"platform_sell_fee" yaml:"platform_sell_fee"`
	PlatformMigrationFee float64 `koanf:"platform_migration_fee" yaml:"platform_migration_fee"`
	CurveLimit           uint64  `koanf:"curve_limit" yaml:"curve_limit"`

	LamportAmount AmountRule `koanf:"lamport_amount" yaml:"lamport_amount"`
	TokenSupply   AmountRule `koanf:"token_supply" yaml:"token_supply"`
	TokenDecimals AmountRule `koanf:"token_decimals" yaml:"token_decimals"`

	Initialized      bool `koanf:"initialized" yaml:"initialized"`
	WhitelistEnabled bool `koanf:"whitelist_enabled" yaml:"whitelist_enabled"`
}

// AmountRule restricts a launch parameter. A non-empty Values list wins
// over Min and Max.
type AmountRule struct {
	Min    *uint64  `koanf:"min" yaml:"min,omitempty"`
	Max    *uint64  `koanf:"max" yaml:"max,omitempty"`
	Values []uint64 `koanf:"values" yaml:"values,omitempty"`
}

// LaunchConfig holds the arguments of `curvectl launch`.
type LaunchConfig struct {
	Decimals               uint8  `koanf:"decimals" yaml:"decimals"`
	TokenSupply            uint64 `koanf:"token_supply" yaml:"token_supply"`
	VirtualLamportReserves uint64 `koanf:"virtual_lamport_reserves" yaml:"virtual_lamport_reserves"`
	Name                   string `koanf:"name" yaml:"name"`
	Symbol                 string `koanf:"symbol" yaml:"symbol"`
	URI                    string `koanf:"uri" yaml:"uri"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsConfig configures the Pushgateway push after each command.
type MetricsConfig struct {
	Pushgateway string `koanf:"pushgateway" yaml:"pushgateway,omitempty"`
	Job         string `koanf:"job" yaml:"job"`
}

// Default returns the profile used when no file exists.
func Default() *CLIConfig {
	return &CLIConfig{
		Cluster: ClusterConfig{
			RPCRateLimit: 10,
			RPCTimeout:   30 * time.Second,
		},
		Program: ProgramConfig{
			ID: "ApRXrsZcqKHzQFrdYYKcPhe66S5oHMwWqnC9DZVqiZFM",
			Seeds: SeedsConfig{
				Config:       "config",
				Global:       "global",
				BondingCurve: "bonding_curve",
				Whitelist:    "wl-seed",
			},
		},
		Project: ProjectConfig{
			InitBondingCurve:     80,
			PlatformBuyFee:       1,
			PlatformSellFee:      1,
			PlatformMigrationFee: 5,
			CurveLimit:           85_000_000_000,
			Initialized:          true,
		},
		Launch: LaunchConfig{
			Decimals:               6,
			TokenSupply:            1_000_000_000_000_000,
			VirtualLamportReserves: 30_000_000_000,
			Name:                   "Curve Token",
			Symbol:                 "CURVE",
		},
		Output: "table",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Job: "curvectl",
		},
	}
}
