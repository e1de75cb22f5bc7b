package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/curvectl/internal/cli/config"
	"github.com/yndnr/curvectl/internal/cli/connection"
	"github.com/yndnr/curvectl/internal/cli/output"
	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/core/service"
	"github.com/yndnr/curvectl/internal/infra/buildinfo"
	"github.com/yndnr/curvectl/internal/infra/tlsroots"
	"github.com/yndnr/curvectl/internal/ledger"
	"github.com/yndnr/curvectl/internal/telemetry/logger"
	"github.com/yndnr/curvectl/internal/telemetry/metric"
)

const backendKey = "backend"

// BackendFactory builds the ledger collaborator for one invocation.
type BackendFactory func(rt *Runtime) (service.Connector, error)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "curvectl",
		Usage:   "Operate a bonding-curve token from the command line",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ledgerCommand(domain.CommandConfig, "Write the project config to the program", nil),
			ledgerCommand(domain.CommandLaunch, "Launch a token with the configured parameters", nil),
			ledgerCommand(domain.CommandAddWl, "Whitelist a creator (defaults to the signer)", []cli.Flag{creatorFlag()}),
			ledgerCommand(domain.CommandRemoveWl, "Remove a creator from the whitelist", []cli.Flag{creatorFlag()}),
			ledgerCommand(domain.CommandSwap, "Buy or sell against a token's bonding curve", swapFlags()),
			ledgerCommand(domain.CommandSimulate, "Quote a swap from the current curve state", swapFlags()),
			ledgerCommand(domain.CommandWithdraw, "Withdraw a completed curve's funds", []cli.Flag{tokenFlag()}),
			ledgerCommand(domain.CommandTransferFee, "Send collected fees to the team wallet", []cli.Flag{tokenFlag()}),
			ledgerCommand(domain.CommandMigrate, "Migrate a completed curve's liquidity", []cli.Flag{tokenFlag()}),
			ledgerCommand(domain.CommandNominateAuthority, "Nominate the next program admin", []cli.Flag{newAdminFlag()}),
			ledgerCommand(domain.CommandAcceptAuthority, "Accept a pending admin nomination as the signer", nil),
			QuoteCommand(),
			ProfileCommand(),
			VersionCommand(),
			ShellCommand(),
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return domain.ErrUnknownCommand.WithDetails(c.Args().First())
			}
			return cli.ShowAppHelp(c)
		},
		// Exit codes are decided by main from the returned error.
		ExitErrHandler: func(*cli.Context, error) {},
		Metadata: map[string]any{
			backendKey: BackendFactory(LedgerBackend),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Profile file (default ~/.curvectl/config.yaml)",
			EnvVars: []string{"CURVECTL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug output to stderr",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
			Value: "text",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a profile key, e.g. --set cluster.rpc_rate_limit=5 (repeatable)",
		},
		&cli.StringFlag{
			Name:    "pushgateway",
			Usage:   "Push command metrics to this Pushgateway URL",
			EnvVars: []string{"CURVECTL_PUSHGATEWAY"},
		},
	}
}

// sharedFlags are the cluster flags every ledger command accepts.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    config.FlagEnv,
			Aliases: []string{"e"},
			Usage:   "Solana cluster name",
			EnvVars: []string{"CURVECTL_ENV"},
			Value:   string(domain.DefaultCluster),
		},
		&cli.StringFlag{
			Name:    config.FlagRPC,
			Aliases: []string{"r"},
			Usage:   "RPC URL or host:port",
			EnvVars: []string{"CURVECTL_RPC"},
			Value:   domain.DefaultRPCURL,
		},
		&cli.StringFlag{
			Name:    config.FlagKeypair,
			Aliases: []string{"k"},
			Usage:   "Signer keypair file (solana-keygen JSON)",
			EnvVars: []string{"CURVECTL_KEYPAIR"},
			Value:   domain.DefaultKeypairPath,
		},
	}
}

// Runtime is the per-invocation environment shared by command actions.
type Runtime struct {
	Config    *config.CLIConfig
	Format    output.Format
	Wide      bool
	Logger    logger.Logger
	Metrics   *metric.Registry
	RequestID string
	Stdout    io.Writer
	Stderr    io.Writer
}

// Context returns ctx carrying the runtime's logger and request ID.
func (rt *Runtime) Context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithLogger(logger.WithRequestID(ctx, rt.RequestID), rt.Logger)
}

// Print formats data to stdout in the selected format.
func (rt *Runtime) Print(data any) error {
	return output.NewFormatter(rt.Format, rt.Wide).Format(rt.Stdout, data)
}

// setup loads the profile and builds the runtime for one invocation.
// Flags win over the profile.
func setup(c *cli.Context) (*Runtime, error) {
	cfg, err := config.Load(c.String("config"), c.StringSlice("set")...)
	if err != nil {
		return nil, err
	}

	formatValue := cfg.Output
	if c.IsSet("output") {
		formatValue = c.String("output")
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return nil, domain.ErrConfigInvalid.WithDetails(err.Error())
	}

	logCfg := logger.DefaultConfig()
	logCfg.Output = c.App.ErrWriter
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	if c.IsSet("log-format") {
		logCfg.Format = c.String("log-format")
	}
	if c.Bool("verbose") {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, domain.ErrConfigInvalid.Wrap(err)
	}

	if c.IsSet("pushgateway") {
		cfg.Metrics.Pushgateway = c.String("pushgateway")
	}

	return &Runtime{
		Config:    cfg,
		Format:    format,
		Wide:      c.Bool("wide"),
		Logger:    log,
		Metrics:   metric.NewRegistry(),
		RequestID: ulid.Make().String(),
		Stdout:    c.App.Writer,
		Stderr:    c.App.ErrWriter,
	}, nil
}

// pushTimeout bounds the Pushgateway call, which still runs after the
// command context was cancelled by an interrupt.
const pushTimeout = 5 * time.Second

// pushMetrics sends the registry to the configured Pushgateway. A failed
// push is logged and never changes the command outcome.
func (rt *Runtime) pushMetrics(ctx context.Context) {
	url := rt.Config.Metrics.Pushgateway
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := rt.Metrics.Push(ctx, url, rt.Config.Metrics.Job); err != nil {
		logger.L(ctx).Warn("metrics push failed", "pushgateway", url, "error", err)
	}
}

// LedgerBackend builds the RPC-backed ledger connector. Instructions are
// written to stdout as envelopes for an external signer.
func LedgerBackend(rt *Runtime) (service.Connector, error) {
	settings, err := rt.Config.Settings()
	if err != nil {
		return nil, err
	}

	cc := rt.Config.Cluster
	opts := []connection.Option{connection.WithObserver(rt.Metrics)}
	if cc.RPCTimeout > 0 {
		opts = append(opts, connection.WithTimeout(cc.RPCTimeout))
	}
	if cc.RPCRateLimit > 0 {
		opts = append(opts, connection.WithRateLimit(cc.RPCRateLimit))
	}
	if cc.RPCCAFile != "" {
		pool, err := tlsroots.FromCAFile(cc.RPCCAFile)
		if err != nil {
			return nil, domain.ErrConfigInvalid.Wrap(fmt.Errorf("cluster.rpc_ca_file: %w", err))
		}
		opts = append(opts, connection.WithTLSConfig(pool.TLSConfig()))
	}

	emitter := ledger.NewEmitter(rt.Stdout, rt.Format)
	return ledger.NewConnector(connection.NewManager(opts...), emitter, settings), nil
}

func backendFrom(c *cli.Context) BackendFactory {
	if f, ok := c.App.Metadata[backendKey].(BackendFactory); ok {
		return f
	}
	return LedgerBackend
}
