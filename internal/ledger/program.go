package ledger

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/yndnr/curvectl/internal/cli/connection"
	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/core/service"
	"github.com/yndnr/curvectl/internal/telemetry/logger"
	"github.com/yndnr/curvectl/pkg/curve"
)

// SPL mint account layout.
const (
	mintAccountSize    = 82
	mintDecimalsOffset = 44
)

// accountDiscriminatorSize prefixes every Anchor account.
const accountDiscriminatorSize = 8

type accountReader interface {
	GetAccountInfo(ctx context.Context, address string) (*connection.AccountInfo, error)
}

// Session is a ledger session bound to one invocation's cluster context.
// It implements service.Operations.
type Session struct {
	requestID string
	cluster   domain.ClusterName
	endpoint  string
	rpc       accountReader
	signer    *Keypair
	settings  Settings
	submitter Submitter
}

var _ service.Operations = (*Session)(nil)

// BondingCurveState is the on-chain bonding curve account of a token.
type BondingCurveState struct {
	TokenMint      domain.PublicKey `json:"token_mint" yaml:"token_mint"`
	Creator        domain.PublicKey `json:"creator" yaml:"creator"`
	InitLamport    uint64           `json:"init_lamport" yaml:"init_lamport"`
	ReserveLamport uint64           `json:"reserve_lamport" yaml:"reserve_lamport"`
	ReserveToken   uint64           `json:"reserve_token" yaml:"reserve_token"`
	IsCompleted    bool             `json:"is_completed" yaml:"is_completed"`
}

// SimulationResult is the locally computed outcome of simulate_swap.
type SimulationResult struct {
	Direction string      `json:"direction" yaml:"direction"`
	Quote     curve.Quote `json:"quote" yaml:"quote"`
}

// ConfigProject writes the project config through configure.
func (s *Session) ConfigProject(ctx context.Context) error {
	cfg := s.settings.Project
	for _, pk := range []*domain.PublicKey{&cfg.Authority, &cfg.PendingAuthority, &cfg.TeamWallet, &cfg.GlobalAuthority} {
		if pk.IsZero() {
			*pk = s.signer.Public
		}
	}

	configPDA, globalVault, err := s.globalAccounts()
	if err != nil {
		return err
	}

	accounts := []AccountMeta{
		{Name: "payer", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "global_config", Pubkey: configPDA, Writable: true},
		{Name: "global_vault", Pubkey: globalVault, Writable: true},
		{Name: "system_program", Pubkey: SystemProgramID},
	}
	return s.submit(ctx, IxConfigure, accounts, ConfigureArgs{NewConfig: cfg}, false, nil)
}

// LaunchToken creates a token and its bonding curve. The mint keypair is
// generated by the signer, so the account list is partial.
func (s *Session) LaunchToken(ctx context.Context) error {
	configPDA, globalVault, err := s.globalAccounts()
	if err != nil {
		return err
	}
	whitelist, err := s.whitelistPDA(s.signer.Public)
	if err != nil {
		return err
	}

	accounts := []AccountMeta{
		{Name: "global_config", Pubkey: configPDA, Writable: true},
		{Name: "global_vault", Pubkey: globalVault, Writable: true},
		{Name: "creator", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "whitelist", Pubkey: whitelist},
		{Name: "system_program", Pubkey: SystemProgramID},
		{Name: "token_program", Pubkey: TokenProgramID},
		{Name: "associated_token_program", Pubkey: AssociatedTokenProgramID},
		{Name: "rent", Pubkey: RentSysvarID},
	}
	return s.submit(ctx, IxLaunch, accounts, s.settings.Launch, false, nil)
}

// AddWhitelist whitelists creator, or the signer when creator is nil.
func (s *Session) AddWhitelist(ctx context.Context, creator *domain.PublicKey) error {
	target := s.signer.Public
	if creator != nil {
		target = *creator
	}
	accounts, err := s.whitelistAccounts(target)
	if err != nil {
		return err
	}
	return s.submit(ctx, IxAddWl, accounts, AddWlArgs{NewCreator: target}, true, nil)
}

// RemoveWhitelist closes the whitelist entry of creator.
func (s *Session) RemoveWhitelist(ctx context.Context, creator domain.PublicKey) error {
	accounts, err := s.whitelistAccounts(creator)
	if err != nil {
		return err
	}
	return s.submit(ctx, IxRemoveWl, accounts, nil, true, nil)
}

// Swap trades amount against the token's bonding curve. The minimum
// receive amount is left at zero.
func (s *Session) Swap(ctx context.Context, token domain.PublicKey, amount uint64, style domain.SwapStyle) error {
	if _, err := s.mintDecimals(ctx, token); err != nil {
		return err
	}
	cfg, err := s.programConfig(ctx)
	if err != nil {
		return err
	}
	configPDA, globalVault, err := s.globalAccounts()
	if err != nil {
		return err
	}
	bondingCurve, err := s.bondingCurvePDA(token)
	if err != nil {
		return err
	}
	vaultATA, err := AssociatedTokenAddress(globalVault, token)
	if err != nil {
		return domain.ErrEncoding.Wrap(err)
	}
	userATA, err := AssociatedTokenAddress(s.signer.Public, token)
	if err != nil {
		return domain.ErrEncoding.Wrap(err)
	}

	accounts := []AccountMeta{
		{Name: "global_config", Pubkey: configPDA, Writable: true},
		{Name: "team_wallet", Pubkey: cfg.TeamWallet, Writable: true},
		{Name: "bonding_curve", Pubkey: bondingCurve, Writable: true},
		{Name: "global_vault", Pubkey: globalVault, Writable: true},
		{Name: "token_mint", Pubkey: token},
		{Name: "global_ata", Pubkey: vaultATA, Writable: true},
		{Name: "user_ata", Pubkey: userATA, Writable: true},
		{Name: "user", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "system_program", Pubkey: SystemProgramID},
		{Name: "token_program", Pubkey: TokenProgramID},
		{Name: "associated_token_program", Pubkey: AssociatedTokenProgramID},
	}
	args := SwapArgs{Amount: amount, Direction: uint8(style)}
	return s.submit(ctx, IxSwap, accounts, args, false, nil)
}

// SimulateSwap builds simulate_swap and attaches a quote computed from the
// current curve and config accounts. The program quotes the raw amount,
// so the curve limit is not applied here, unlike Swap.
func (s *Session) SimulateSwap(ctx context.Context, token domain.PublicKey, amount uint64, style domain.SwapStyle) error {
	decimals, err := s.mintDecimals(ctx, token)
	if err != nil {
		return err
	}
	cfg, err := s.programConfig(ctx)
	if err != nil {
		return err
	}
	state, err := s.bondingCurve(ctx, token)
	if err != nil {
		return err
	}

	quote, err := curve.AmountOut(
		curve.Reserves{Token: state.ReserveToken, Lamport: state.ReserveLamport},
		amount, decimals, uint8(style),
		curve.Fees{Buy: cfg.PlatformBuyFee, Sell: cfg.PlatformSellFee},
	)
	if err != nil {
		return domain.ErrQuoteInput.Wrap(err)
	}

	configPDA, err := s.configPDA()
	if err != nil {
		return err
	}
	bondingCurve, err := s.bondingCurvePDA(token)
	if err != nil {
		return err
	}
	accounts := []AccountMeta{
		{Name: "global_config", Pubkey: configPDA},
		{Name: "bonding_curve", Pubkey: bondingCurve},
		{Name: "token_mint", Pubkey: token},
	}
	args := SimulateSwapArgs{Amount: amount, Direction: uint8(style)}
	result := &SimulationResult{Direction: style.String(), Quote: quote}
	return s.submit(ctx, IxSimulateSwap, accounts, args, true, result)
}

// Withdraw moves the vault's SOL and tokens of a completed curve to the
// admin.
func (s *Session) Withdraw(ctx context.Context, token domain.PublicKey) error {
	if _, err := s.mintDecimals(ctx, token); err != nil {
		return err
	}
	configPDA, globalVault, err := s.globalAccounts()
	if err != nil {
		return err
	}
	bondingCurve, err := s.bondingCurvePDA(token)
	if err != nil {
		return err
	}
	vaultATA, err := AssociatedTokenAddress(globalVault, token)
	if err != nil {
		return domain.ErrEncoding.Wrap(err)
	}
	adminATA, err := AssociatedTokenAddress(s.signer.Public, token)
	if err != nil {
		return domain.ErrEncoding.Wrap(err)
	}

	accounts := []AccountMeta{
		{Name: "global_config", Pubkey: configPDA, Writable: true},
		{Name: "global_vault", Pubkey: globalVault, Writable: true},
		{Name: "admin", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "token_mint", Pubkey: token},
		{Name: "bonding_curve", Pubkey: bondingCurve, Writable: true},
		{Name: "global_vault_ata", Pubkey: vaultATA, Writable: true},
		{Name: "admin_ata", Pubkey: adminATA, Writable: true},
		{Name: "system_program", Pubkey: SystemProgramID},
		{Name: "token_program", Pubkey: TokenProgramID},
		{Name: "associated_token_program", Pubkey: AssociatedTokenProgramID},
	}
	return s.submit(ctx, IxWithdraw, accounts, nil, true, nil)
}

// TransferFee sends the collected fees of a completed curve to the team
// wallet recorded in the program config.
func (s *Session) TransferFee(ctx context.Context, token domain.PublicKey) error {
	if _, err := s.mintDecimals(ctx, token); err != nil {
		return err
	}
	teamWallet, err := s.teamWallet(ctx)
	if err != nil {
		return err
	}
	configPDA, globalVault, err := s.globalAccounts()
	if err != nil {
		return err
	}
	bondingCurve, err := s.bondingCurvePDA(token)
	if err != nil {
		return err
	}

	var atas [3]domain.PublicKey
	for i, pair := range [][2]domain.PublicKey{
		{globalVault, token},
		{teamWallet, token},
		{globalVault, NativeMintID},
	} {
		if atas[i], err = AssociatedTokenAddress(pair[0], pair[1]); err != nil {
			return domain.ErrEncoding.Wrap(err)
		}
	}

	accounts := []AccountMeta{
		{Name: "team_wallet", Pubkey: teamWallet, Writable: true},
		{Name: "global_config", Pubkey: configPDA},
		{Name: "bonding_curve", Pubkey: bondingCurve, Writable: true},
		{Name: "global_vault", Pubkey: globalVault, Writable: true},
		{Name: "token_program", Pubkey: TokenProgramID},
		{Name: "associated_token_program", Pubkey: AssociatedTokenProgramID},
		{Name: "system_program", Pubkey: SystemProgramID},
		{Name: "coin_mint", Pubkey: token},
		{Name: "pc_mint", Pubkey: NativeMintID},
		{Name: "payer", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "global_token_account", Pubkey: atas[0], Writable: true},
		{Name: "team_ata", Pubkey: atas[1], Writable: true},
		{Name: "global_wsol_account", Pubkey: atas[2], Writable: true},
	}
	return s.submit(ctx, IxTransferFee, accounts, nil, true, nil)
}

// Migrate moves a completed curve's liquidity to the AMM. The AMM pool
// accounts are added by the signer.
func (s *Session) Migrate(ctx context.Context, token domain.PublicKey) error {
	if _, err := s.mintDecimals(ctx, token); err != nil {
		return err
	}
	configPDA, globalVault, err := s.globalAccounts()
	if err != nil {
		return err
	}
	bondingCurve, err := s.bondingCurvePDA(token)
	if err != nil {
		return err
	}

	accounts := []AccountMeta{
		{Name: "global_config", Pubkey: configPDA},
		{Name: "global_vault", Pubkey: globalVault, Writable: true},
		{Name: "bonding_curve", Pubkey: bondingCurve, Writable: true},
		{Name: "coin_mint", Pubkey: token},
		{Name: "pc_mint", Pubkey: NativeMintID},
		{Name: "payer", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "token_program", Pubkey: TokenProgramID},
		{Name: "associated_token_program", Pubkey: AssociatedTokenProgramID},
		{Name: "system_program", Pubkey: SystemProgramID},
		{Name: "rent", Pubkey: RentSysvarID},
	}
	return s.submit(ctx, IxMigrate, accounts, MigrateArgs{Nonce: s.settings.MigrateNonce}, false, nil)
}

// NominateAuthority starts an admin handover: newAdmin becomes the pending
// authority and takes over once it calls AcceptAuthority.
func (s *Session) NominateAuthority(ctx context.Context, newAdmin domain.PublicKey) error {
	configPDA, err := s.configPDA()
	if err != nil {
		return err
	}
	accounts := []AccountMeta{
		{Name: "admin", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "global_config", Pubkey: configPDA, Writable: true},
	}
	return s.submit(ctx, IxNominateAuthority, accounts, NominateAuthorityArgs{NewAdmin: newAdmin}, true, nil)
}

// AcceptAuthority completes a handover. The signer must be the pending
// authority recorded by NominateAuthority.
func (s *Session) AcceptAuthority(ctx context.Context) error {
	configPDA, err := s.configPDA()
	if err != nil {
		return err
	}
	accounts := []AccountMeta{
		{Name: "new_admin", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "global_config", Pubkey: configPDA, Writable: true},
	}
	return s.submit(ctx, IxAcceptAuthority, accounts, nil, true, nil)
}

func (s *Session) submit(ctx context.Context, name string, accounts []AccountMeta, args any, complete bool, result any) error {
	data, err := EncodeInstruction(name, args)
	if err != nil {
		return domain.ErrEncoding.Wrap(err)
	}

	env := &Envelope{
		RequestID:        s.requestID,
		Cluster:          s.cluster.String(),
		Endpoint:         s.endpoint,
		Instruction:      name,
		ProgramID:        s.settings.ProgramID,
		Signer:           s.signer.Public,
		Accounts:         accounts,
		Data:             base64.StdEncoding.EncodeToString(data),
		AccountsComplete: complete,
		Args:             args,
		Result:           result,
	}

	logger.L(ctx).Info("instruction built",
		"instruction", name,
		"accounts", len(accounts),
		"accounts_complete", complete,
	)
	return s.submitter.Submit(ctx, env)
}

func (s *Session) pda(seeds ...[]byte) (domain.PublicKey, error) {
	addr, _, err := FindProgramAddress(seeds, s.settings.ProgramID)
	if err != nil {
		return addr, domain.ErrEncoding.Wrap(fmt.Errorf("derive address: %w", err))
	}
	return addr, nil
}

func (s *Session) configPDA() (domain.PublicKey, error) {
	return s.pda([]byte(s.settings.Seeds.Config))
}

func (s *Session) globalAccounts() (config, vault domain.PublicKey, err error) {
	if config, err = s.configPDA(); err != nil {
		return
	}
	vault, err = s.pda([]byte(s.settings.Seeds.Global))
	return
}

func (s *Session) bondingCurvePDA(token domain.PublicKey) (domain.PublicKey, error) {
	return s.pda([]byte(s.settings.Seeds.BondingCurve), token[:])
}

func (s *Session) whitelistPDA(creator domain.PublicKey) (domain.PublicKey, error) {
	return s.pda([]byte(s.settings.Seeds.Whitelist), creator[:])
}

func (s *Session) whitelistAccounts(creator domain.PublicKey) ([]AccountMeta, error) {
	configPDA, err := s.configPDA()
	if err != nil {
		return nil, err
	}
	whitelist, err := s.whitelistPDA(creator)
	if err != nil {
		return nil, err
	}
	return []AccountMeta{
		{Name: "global_config", Pubkey: configPDA, Writable: true},
		{Name: "whitelist", Pubkey: whitelist, Writable: true},
		{Name: "admin", Pubkey: s.signer.Public, Signer: true, Writable: true},
		{Name: "system_program", Pubkey: SystemProgramID},
	}, nil
}

// fetch returns the decoded data of address, or nil when the account
// does not exist.
func (s *Session) fetch(ctx context.Context, address domain.PublicKey) (*connection.AccountInfo, []byte, error) {
	info, err := s.rpc.GetAccountInfo(ctx, address.String())
	if err != nil {
		return nil, nil, domain.ErrRPC.Wrap(fmt.Errorf("getAccountInfo %s: %w", address, err))
	}
	if info == nil {
		return nil, nil, nil
	}
	if len(info.Data) == 0 {
		return info, nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(info.Data[0])
	if err != nil {
		return nil, nil, domain.ErrRPC.Wrap(fmt.Errorf("decode account %s: %w", address, err))
	}
	return info, data, nil
}

// mintDecimals checks that token is an SPL mint and returns its decimals.
func (s *Session) mintDecimals(ctx context.Context, token domain.PublicKey) (uint8, error) {
	info, data, err := s.fetch(ctx, token)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, domain.ErrTokenNotFound.WithDetails(token.String())
	}
	if info.Owner != TokenProgramID.String() || len(data) < mintAccountSize {
		return 0, domain.ErrTokenNotFound.WithDetails(fmt.Sprintf("%s is not a token mint", token))
	}
	return data[mintDecimalsOffset], nil
}

func (s *Session) programConfig(ctx context.Context) (*ProgramConfig, error) {
	addr, err := s.configPDA()
	if err != nil {
		return nil, err
	}
	var cfg ProgramConfig
	if err := s.decodeAccount(ctx, addr, "global config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// teamWallet reads team_wallet straight from the config account, which
// does not require decoding the variable length tail.
func (s *Session) teamWallet(ctx context.Context) (domain.PublicKey, error) {
	addr, err := s.configPDA()
	if err != nil {
		return domain.PublicKey{}, err
	}
	info, data, err := s.fetch(ctx, addr)
	if err != nil {
		return domain.PublicKey{}, err
	}
	if info == nil || len(data) < teamWalletOffset+domain.PublicKeySize {
		return domain.PublicKey{}, domain.ErrRPC.WithDetails("global config account missing or truncated")
	}
	return domain.PublicKeyFromBytes(data[teamWalletOffset : teamWalletOffset+domain.PublicKeySize])
}

func (s *Session) bondingCurve(ctx context.Context, token domain.PublicKey) (*BondingCurveState, error) {
	addr, err := s.bondingCurvePDA(token)
	if err != nil {
		return nil, err
	}
	var state BondingCurveState
	if err := s.decodeAccount(ctx, addr, "bonding curve", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Session) decodeAccount(ctx context.Context, addr domain.PublicKey, what string, v any) error {
	info, data, err := s.fetch(ctx, addr)
	if err != nil {
		return err
	}
	if info == nil {
		return domain.ErrTokenNotFound.WithDetails(fmt.Sprintf("%s account %s not found", what, addr))
	}
	if len(data) < accountDiscriminatorSize {
		return domain.ErrRPC.WithDetails(fmt.Sprintf("%s account %s truncated", what, addr))
	}
	if err := borsh.Deserialize(v, data[accountDiscriminatorSize:]); err != nil {
		return domain.ErrRPC.Wrap(fmt.Errorf("decode %s: %w", what, err))
	}
	return nil
}
