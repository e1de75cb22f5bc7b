package domain

import "fmt"

// CommandName identifies a CLI command that dispatches to the ledger.
type CommandName string

// Dispatchable commands.
const (
	CommandConfig      CommandName = "config"
	CommandLaunch      CommandName = "launch"
	CommandAddWl       CommandName = "addWl"
	CommandRemoveWl    CommandName = "removeWl"
	CommandSwap        CommandName = "swap"
	CommandSimulate    CommandName = "simulate"
	CommandWithdraw    CommandName = "withdraw"
	CommandTransferFee CommandName = "transferFee"
	CommandMigrate     CommandName = "migrate"

	CommandNominateAuthority CommandName = "nominateAuthority"
	CommandAcceptAuthority   CommandName = "acceptAuthority"
)

// Commands lists every dispatchable command in help order.
func Commands() []CommandName {
	return []CommandName{
		CommandConfig,
		CommandLaunch,
		CommandAddWl,
		CommandRemoveWl,
		CommandSwap,
		CommandSimulate,
		CommandWithdraw,
		CommandTransferFee,
		CommandMigrate,
		CommandNominateAuthority,
		CommandAcceptAuthority,
	}
}

func (n CommandName) String() string {
	return string(n)
}

// SwapStyle is the swap direction.
type SwapStyle uint8

// Swap directions, as encoded on chain.
const (
	SwapBuy  SwapStyle = 0
	SwapSell SwapStyle = 1
)

// ParseSwapStyle parses "0" (buy) or "1" (sell).
func ParseSwapStyle(s string) (SwapStyle, error) {
	switch s {
	case "0":
		return SwapBuy, nil
	case "1":
		return SwapSell, nil
	}
	return 0, fmt.Errorf("style %q is not 0 (buy) or 1 (sell)", s)
}

func (s SwapStyle) String() string {
	switch s {
	case SwapBuy:
		return "buy"
	case SwapSell:
		return "sell"
	}
	return fmt.Sprintf("SwapStyle(%d)", uint8(s))
}

// RawParams holds command-specific options exactly as parsed.
// A nil field means the flag was not given.
type RawParams struct {
	Token    *string
	Amount   *string
	Style    *string
	Creator  *string
	NewAdmin *string
}

// Invocation is the parsed input of one command execution, before
// resolution and validation.
type Invocation struct {
	Command CommandName

	// Shared inputs; empty means "not given".
	Env         string
	KeypairPath string
	RPCURL      string

	Params RawParams
}

// OperationParams is the validated, command-specific part of a request.
type OperationParams interface {
	operationParams()
}

// NoParams is used by commands without extra parameters.
type NoParams struct{}

// TokenParams is used by commands that act on one token mint.
type TokenParams struct {
	Token PublicKey `json:"token"`
}

// SwapParams is used by swap and simulate.
type SwapParams struct {
	Token  PublicKey `json:"token"`
	Amount uint64    `json:"amount"`
	Style  SwapStyle `json:"style"`
}

// WhitelistParams is used by whitelist maintenance. A nil Creator means the
// signer itself.
type WhitelistParams struct {
	Creator *PublicKey `json:"creator,omitempty"`
}

// AuthorityParams is used by nominateAuthority.
type AuthorityParams struct {
	NewAdmin PublicKey `json:"new_admin"`
}

func (NoParams) operationParams()        {}
func (TokenParams) operationParams()     {}
func (SwapParams) operationParams()      {}
func (WhitelistParams) operationParams() {}
func (AuthorityParams) operationParams() {}

// CommandRequest is a fully resolved and validated request.
type CommandRequest struct {
	Name    CommandName
	Cluster ClusterContext
	Params  OperationParams
}

// Stage is a step of the per-invocation state machine.
type Stage int

// Stages in the order an invocation walks through them.
const (
	StageParsed Stage = iota
	StageResolved
	StageValidated
	StageDispatched
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "parsed"
	case StageResolved:
		return "resolved"
	case StageValidated:
		return "validated"
	case StageDispatched:
		return "dispatched"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}
