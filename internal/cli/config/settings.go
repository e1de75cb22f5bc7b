package config

import (
	"fmt"
	"math"

	"github.com/yndnr/curvectl/internal/cli/output"
	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/ledger"
	"github.com/yndnr/curvectl/internal/telemetry/logger"
)

// Validate checks the values that have a closed set of choices.
func (c *CLIConfig) Validate() error {
	if _, err := output.ParseFormat(c.Output); err != nil {
		return domain.ErrConfigInvalid.WithDetails("output: " + err.Error())
	}
	switch c.Log.Format {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("log.format: unknown format %q", c.Log.Format))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return domain.ErrConfigInvalid.WithDetails("log.level: " + err.Error())
	}
	if c.Cluster.RPCRateLimit < 0 {
		return domain.ErrConfigInvalid.WithDetails("cluster.rpc_rate_limit must not be negative")
	}
	if _, err := c.Settings(); err != nil {
		return err
	}
	return nil
}

// Settings converts the program, project and launch sections into ledger
// settings.
func (c *CLIConfig) Settings() (ledger.Settings, error) {
	s := ledger.DefaultSettings()

	id, err := domain.DecodePublicKey(c.Program.ID)
	if err != nil {
		return s, domain.ErrConfigInvalid.WithDetails("program.id: " + err.Error())
	}
	s.ProgramID = id
	s.MigrateNonce = c.Program.MigrateNonce

	seeds := c.Program.Seeds
	for _, v := range []*string{&seeds.Config, &seeds.Global, &seeds.BondingCurve, &seeds.Whitelist} {
		if len(*v) > 32 {
			return s, domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("program.seeds: %q is longer than 32 bytes", *v))
		}
	}
	if seeds.Config != "" {
		s.Seeds.Config = seeds.Config
	}
	if seeds.Global != "" {
		s.Seeds.Global = seeds.Global
	}
	if seeds.BondingCurve != "" {
		s.Seeds.BondingCurve = seeds.BondingCurve
	}
	if seeds.Whitelist != "" {
		s.Seeds.Whitelist = seeds.Whitelist
	}

	p := c.Project
	cfg := &s.Project
	addresses := []struct {
		key string
		src string
		dst *domain.PublicKey
	}{
		{"project.authority", p.Authority, &cfg.Authority},
		{"project.pending_authority", p.PendingAuthority, &cfg.PendingAuthority},
		{"project.team_wallet", p.TeamWallet, &cfg.TeamWallet},
		{"project.global_authority", p.GlobalAuthority, &cfg.GlobalAuthority},
	}
	for _, a := range addresses {
		if a.src == "" {
			continue
		}
		pk, err := domain.DecodePublicKey(a.src)
		if err != nil {
			return s, domain.ErrConfigInvalid.WithDetails(a.key + ": " + err.Error())
		}
		*a.dst = pk
	}

	for key, fee := range map[string]float64{
		"project.platform_buy_fee":       p.PlatformBuyFee,
		"project.platform_sell_fee":      p.PlatformSellFee,
		"project.platform_migration_fee": p.PlatformMigrationFee,
	} {
		if fee < 0 || fee >= 100 {
			return s, domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("%s: %v is outside [0, 100)", key, fee))
		}
	}
	if p.InitBondingCurve <= 0 || p.InitBondingCurve > 100 {
		return s, domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("project.init_bonding_curve: %v is outside (0, 100]", p.InitBondingCurve))
	}

	cfg.InitBondingCurve = p.InitBondingCurve
	cfg.PlatformBuyFee = p.PlatformBuyFee
	cfg.PlatformSellFee = p.PlatformSellFee
	cfg.PlatformMigrationFee = p.PlatformMigrationFee
	cfg.CurveLimit = p.CurveLimit
	cfg.Initialized = p.Initialized
	cfg.WhitelistEnabled = p.WhitelistEnabled
	cfg.LamportAmountConfig = p.LamportAmount.u64()
	cfg.TokenSupplyConfig = p.TokenSupply.u64()
	if cfg.TokenDecimalsConfig, err = p.TokenDecimals.u8(); err != nil {
		return s, domain.ErrConfigInvalid.WithDetails("project.token_decimals: " + err.Error())
	}

	s.Launch = ledger.LaunchArgs{
		Decimals:               c.Launch.Decimals,
		TokenSupply:            c.Launch.TokenSupply,
		VirtualLamportReserves: c.Launch.VirtualLamportReserves,
		Name:                   c.Launch.Name,
		Symbol:                 c.Launch.Symbol,
		URI:                    c.Launch.URI,
	}
	return s, nil
}

func (r AmountRule) u64() ledger.AmountConfigU64 {
	if len(r.Values) > 0 {
		return ledger.ValuesOfU64(r.Values...)
	}
	return ledger.RangeOfU64(r.Min, r.Max)
}

func (r AmountRule) u8() (ledger.AmountConfigU8, error) {
	narrow := func(v uint64) (uint8, error) {
		if v > math.MaxUint8 {
			return 0, fmt.Errorf("%d does not fit in a byte", v)
		}
		return uint8(v), nil
	}
	ptr := func(p *uint64) (*uint8, error) {
		if p == nil {
			return nil, nil
		}
		v, err := narrow(*p)
		return &v, err
	}

	if len(r.Values) > 0 {
		values := make([]uint8, len(r.Values))
		for i, v := range r.Values {
			n, err := narrow(v)
			if err != nil {
				return ledger.AmountConfigU8{}, err
			}
			values[i] = n
		}
		return ledger.ValuesOfU8(values...), nil
	}

	lo, err := ptr(r.Min)
	if err != nil {
		return ledger.AmountConfigU8{}, err
	}
	hi, err := ptr(r.Max)
	if err != nil {
		return ledger.AmountConfigU8{}, err
	}
	return ledger.RangeOfU8(lo, hi), nil
}
