package service

import (
	"context"
	"fmt"

	"github.com/yndnr/curvectl/internal/core/domain"
)

// Connector establishes the cluster and signing context of one invocation
// (setClusterConfig). The returned Operations are bound to that context and
// must not outlive the invocation.
type Connector interface {
	Connect(ctx context.Context, cluster domain.ClusterContext) (Operations, error)
}

// Operations are the ledger units of work a request can dispatch to.
// Each call may block on network I/O.
type Operations interface {
	ConfigProject(ctx context.Context) error
	LaunchToken(ctx context.Context) error
	// AddWhitelist whitelists creator; nil means the signer.
	AddWhitelist(ctx context.Context, creator *domain.PublicKey) error
	RemoveWhitelist(ctx context.Context, creator domain.PublicKey) error
	Swap(ctx context.Context, token domain.PublicKey, amount uint64, style domain.SwapStyle) error
	SimulateSwap(ctx context.Context, token domain.PublicKey, amount uint64, style domain.SwapStyle) error
	Withdraw(ctx context.Context, token domain.PublicKey) error
	TransferFee(ctx context.Context, token domain.PublicKey) error
	Migrate(ctx context.Context, token domain.PublicKey) error
	// NominateAuthority records newAdmin as the pending admin.
	NominateAuthority(ctx context.Context, newAdmin domain.PublicKey) error
	// AcceptAuthority makes the signer, as pending admin, the admin.
	AcceptAuthority(ctx context.Context) error
}

// Dispatcher maps a validated request to exactly one operation.
type Dispatcher struct {
	connector Connector
}

// NewDispatcher creates a Dispatcher that opens sessions through connector.
func NewDispatcher(connector Connector) *Dispatcher {
	return &Dispatcher{connector: connector}
}

// Dispatch connects to the request's cluster and invokes the operation for
// req.Name once. Errors from the connector and the operation are returned
// as is.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.CommandRequest) error {
	call, err := bind(req)
	if err != nil {
		return err
	}

	ops, err := d.connector.Connect(ctx, req.Cluster)
	if err != nil {
		return err
	}

	return call(ctx, ops)
}

type operationCall func(ctx context.Context, ops Operations) error

// bind selects the operation before any connection is made, so a malformed
// request never reaches the network.
func bind(req *domain.CommandRequest) (operationCall, error) {
	mismatch := func() error {
		return domain.ErrParamsMismatch.WithDetails(fmt.Sprintf("%s with %T", req.Name, req.Params))
	}

	switch req.Name {
	case domain.CommandConfig:
		return func(ctx context.Context, ops Operations) error { return ops.ConfigProject(ctx) }, nil
	case domain.CommandLaunch:
		return func(ctx context.Context, ops Operations) error { return ops.LaunchToken(ctx) }, nil
	case domain.CommandAcceptAuthority:
		return func(ctx context.Context, ops Operations) error { return ops.AcceptAuthority(ctx) }, nil
	case domain.CommandNominateAuthority:
		p, ok := req.Params.(domain.AuthorityParams)
		if !ok {
			return nil, mismatch()
		}
		return func(ctx context.Context, ops Operations) error { return ops.NominateAuthority(ctx, p.NewAdmin) }, nil
	case domain.CommandAddWl, domain.CommandRemoveWl:
		p, ok := req.Params.(domain.WhitelistParams)
		if !ok {
			return nil, mismatch()
		}
		if req.Name == domain.CommandAddWl {
			return func(ctx context.Context, ops Operations) error { return ops.AddWhitelist(ctx, p.Creator) }, nil
		}
		if p.Creator == nil {
			return nil, domain.ErrMissingCreator
		}
		creator := *p.Creator
		return func(ctx context.Context, ops Operations) error { return ops.RemoveWhitelist(ctx, creator) }, nil
	case domain.CommandSwap, domain.CommandSimulate:
		p, ok := req.Params.(domain.SwapParams)
		if !ok {
			return nil, mismatch()
		}
		if req.Name == domain.CommandSwap {
			return func(ctx context.Context, ops Operations) error {
				return ops.Swap(ctx, p.Token, p.Amount, p.Style)
			}, nil
		}
		return func(ctx context.Context, ops Operations) error {
			return ops.SimulateSwap(ctx, p.Token, p.Amount, p.Style)
		}, nil
	case domain.CommandWithdraw, domain.CommandTransferFee, domain.CommandMigrate:
		p, ok := req.Params.(domain.TokenParams)
		if !ok {
			return nil, mismatch()
		}
		switch req.Name {
		case domain.CommandWithdraw:
			return func(ctx context.Context, ops Operations) error { return ops.Withdraw(ctx, p.Token) }, nil
		case domain.CommandTransferFee:
			return func(ctx context.Context, ops Operations) error { return ops.TransferFee(ctx, p.Token) }, nil
		default:
			return func(ctx context.Context, ops Operations) error { return ops.Migrate(ctx, p.Token) }, nil
		}
	}
	return nil, domain.ErrUnknownCommand.WithDetails(string(req.Name))
}
