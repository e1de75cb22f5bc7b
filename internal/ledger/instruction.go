package ledger

import (
	"crypto/sha256"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/yndnr/curvectl/internal/core/domain"
)

// Instruction names of the curve program.
const (
	IxConfigure    = "configure"
	IxLaunch       = "launch"
	IxSwap         = "swap"
	IxSimulateSwap = "simulate_swap"
	IxWithdraw     = "withdraw"
	IxTransferFee  = "transfer_fee"
	IxAddWl        = "add_wl"
	IxRemoveWl     = "remove_wl"
	IxMigrate      = "migrate"

	IxNominateAuthority = "nominate_authority"
	IxAcceptAuthority   = "accept_authority"
)

// Discriminator returns the Anchor instruction discriminator: the first
// eight bytes of sha256("global:<name>").
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// AccountMeta is one account an instruction touches.
type AccountMeta struct {
	Name     string           `json:"name" yaml:"name"`
	Pubkey   domain.PublicKey `json:"pubkey" yaml:"pubkey"`
	Signer   bool             `json:"is_signer" yaml:"is_signer"`
	Writable bool             `json:"is_writable" yaml:"is_writable"`
}

// EncodeInstruction builds instruction data for name: the discriminator
// followed by the borsh encoding of args. args must be a struct whose
// fields are the instruction parameters in order, or nil.
func EncodeInstruction(name string, args any) ([]byte, error) {
	d := Discriminator(name)
	if args == nil {
		return d[:], nil
	}
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", name, err)
	}
	return append(d[:], body...), nil
}

// SwapArgs are the parameters of swap.
type SwapArgs struct {
	Amount               uint64 `json:"amount" yaml:"amount"`
	Direction            uint8  `json:"direction" yaml:"direction"`
	MinimumReceiveAmount uint64 `json:"minimum_receive_amount" yaml:"minimum_receive_amount"`
}

// SimulateSwapArgs are the parameters of simulate_swap.
type SimulateSwapArgs struct {
	Amount    uint64 `json:"amount" yaml:"amount"`
	Direction uint8  `json:"direction" yaml:"direction"`
}

// LaunchArgs are the parameters of launch.
type LaunchArgs struct {
	Decimals               uint8  `json:"decimals" yaml:"decimals"`
	TokenSupply            uint64 `json:"token_supply" yaml:"token_supply"`
	VirtualLamportReserves uint64 `json:"virtual_lamport_reserves" yaml:"virtual_lamport_reserves"`
	Name                   string `json:"name" yaml:"name"`
	Symbol                 string `json:"symbol" yaml:"symbol"`
	URI                    string `json:"uri" yaml:"uri"`
}

// AddWlArgs are the parameters of add_wl.
type AddWlArgs struct {
	NewCreator domain.PublicKey `json:"new_creator" yaml:"new_creator"`
}

// NominateAuthorityArgs are the parameters of nominate_authority.
type NominateAuthorityArgs struct {
	NewAdmin domain.PublicKey `json:"new_admin" yaml:"new_admin"`
}

// MigrateArgs are the parameters of migrate.
type MigrateArgs struct {
	Nonce uint8 `json:"nonce" yaml:"nonce"`
}

// ConfigureArgs wraps the new global config.
type ConfigureArgs struct {
	NewConfig ProgramConfig `json:"new_config" yaml:"new_config"`
}

// ProgramConfig is the on-chain global config account, in field order.
type ProgramConfig struct {
	Authority            domain.PublicKey `json:"authority" yaml:"authority"`
	PendingAuthority     domain.PublicKey `json:"pending_authority" yaml:"pending_authority"`
	TeamWallet           domain.PublicKey `json:"team_wallet" yaml:"team_wallet"`
	InitBondingCurve     float64          `json:"init_bonding_curve" yaml:"init_bonding_curve"`
	PlatformBuyFee       float64          `json:"platform_buy_fee" yaml:"platform_buy_fee"`
	PlatformSellFee      float64          `json:"platform_sell_fee" yaml:"platform_sell_fee"`
	PlatformMigrationFee float64          `json:"platform_migration_fee" yaml:"platform_migration_fee"`
	CurveLimit           uint64           `json:"curve_limit" yaml:"curve_limit"`
	LamportAmountConfig  AmountConfigU64  `json:"lamport_amount_config" yaml:"lamport_amount_config"`
	TokenSupplyConfig    AmountConfigU64  `json:"token_supply_config" yaml:"token_supply_config"`
	TokenDecimalsConfig  AmountConfigU8   `json:"token_decimals_config" yaml:"token_decimals_config"`
	Initialized          bool             `json:"initialized" yaml:"initialized"`
	GlobalAuthority      domain.PublicKey `json:"global_authority" yaml:"global_authority"`
	WhitelistEnabled     bool             `json:"whitelist_enabled" yaml:"whitelist_enabled"`
}

// teamWalletOffset locates team_wallet in the config account data, past
// the account discriminator, authority and pending_authority.
const teamWalletOffset = 8 + 32 + 32

// AmountConfigU64 is either a Range or a set of allowed Values.
type AmountConfigU64 struct {
	Enum   borsh.Enum `borsh_enum:"true" json:"-" yaml:"-"`
	Range  RangeU64   `json:"range" yaml:"range"`
	Values ValuesU64  `json:"values" yaml:"values"`
}

// RangeU64 bounds a value; nil means unbounded.
type RangeU64 struct {
	Min *uint64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *uint64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// ValuesU64 is the Enum variant payload. Variant payloads must be structs
// for the borsh encoder to write them.
type ValuesU64 struct {
	Allowed []uint64 `json:"allowed" yaml:"allowed"`
}

// AmountConfigU8 is either a Range or a set of allowed Values.
type AmountConfigU8 struct {
	Enum   borsh.Enum `borsh_enum:"true" json:"-" yaml:"-"`
	Range  RangeU8    `json:"range" yaml:"range"`
	Values ValuesU8   `json:"values" yaml:"values"`
}

// RangeU8 bounds a value; nil means unbounded.
type RangeU8 struct {
	Min *uint8 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *uint8 `json:"max,omitempty" yaml:"max,omitempty"`
}

// ValuesU8 is the Enum variant payload.
type ValuesU8 struct {
	Allowed []uint8 `json:"allowed" yaml:"allowed"`
}

// Amount config variants.
const (
	AmountRange borsh.Enum = iota
	AmountEnum
)

// RangeOfU64 builds a Range variant.
func RangeOfU64(lo, hi *uint64) AmountConfigU64 {
	return AmountConfigU64{Enum: AmountRange, Range: RangeU64{Min: lo, Max: hi}}
}

// RangeOfU8 builds a Range variant.
func RangeOfU8(lo, hi *uint8) AmountConfigU8 {
	return AmountConfigU8{Enum: AmountRange, Range: RangeU8{Min: lo, Max: hi}}
}

// ValuesOfU64 builds an Enum variant.
func ValuesOfU64(allowed ...uint64) AmountConfigU64 {
	return AmountConfigU64{Enum: AmountEnum, Values: ValuesU64{Allowed: allowed}}
}

// ValuesOfU8 builds an Enum variant.
func ValuesOfU8(allowed ...uint8) AmountConfigU8 {
	return AmountConfigU8{Enum: AmountEnum, Values: ValuesU8{Allowed: allowed}}
}
