package service

import (
	"strconv"

	"github.com/yndnr/curvectl/internal/core/domain"
)

// presenceCheck reports err when the selected raw field was not given.
type presenceCheck struct {
	field func(*domain.RawParams) *string
	err   *domain.DomainError
}

// rule is the validation checklist of one command. Presence checks run
// first, in order; build then parses the present fields in the same order.
type rule struct {
	required []presenceCheck
	build    func(*domain.RawParams) (domain.OperationParams, error)
}

var (
	tokenPresent   = presenceCheck{field: func(p *domain.RawParams) *string { return p.Token }, err: domain.ErrMissingToken}
	amountPresent  = presenceCheck{field: func(p *domain.RawParams) *string { return p.Amount }, err: domain.ErrMissingAmount}
	stylePresent   = presenceCheck{field: func(p *domain.RawParams) *string { return p.Style }, err: domain.ErrMissingStyle}
	creatorPresent = presenceCheck{field: func(p *domain.RawParams) *string { return p.Creator }, err: domain.ErrMissingCreator}
	adminPresent   = presenceCheck{field: func(p *domain.RawParams) *string { return p.NewAdmin }, err: domain.ErrMissingNewAdmin}
)

var rules = map[domain.CommandName]rule{
	domain.CommandConfig: {build: noParams},
	domain.CommandLaunch: {build: noParams},
	domain.CommandAddWl:  {build: optionalCreator},
	domain.CommandRemoveWl: {
		required: []presenceCheck{creatorPresent},
		build:    requiredCreator,
	},
	domain.CommandSwap: {
		required: []presenceCheck{tokenPresent, amountPresent, stylePresent},
		build:    swapParams,
	},
	domain.CommandSimulate: {
		required: []presenceCheck{tokenPresent, amountPresent, stylePresent},
		build:    swapParams,
	},
	domain.CommandWithdraw:    {required: []presenceCheck{tokenPresent}, build: tokenParams},
	domain.CommandTransferFee: {required: []presenceCheck{tokenPresent}, build: tokenParams},
	domain.CommandMigrate:     {required: []presenceCheck{tokenPresent}, build: tokenParams},

	domain.CommandNominateAuthority: {required: []presenceCheck{adminPresent}, build: authorityParams},
	domain.CommandAcceptAuthority:   {build: noParams},
}

// Validate runs the checklist of the named command against raw and
// returns the request to dispatch. The first failing check decides the
// returned error; later checks are not evaluated.
func Validate(name domain.CommandName, cluster domain.ClusterContext, raw domain.RawParams) (*domain.CommandRequest, error) {
	r, ok := rules[name]
	if !ok {
		return nil, domain.ErrUnknownCommand.WithDetails(string(name))
	}

	for _, c := range r.required {
		if c.field(&raw) == nil {
			return nil, c.err
		}
	}

	params, err := r.build(&raw)
	if err != nil {
		return nil, err
	}

	return &domain.CommandRequest{
		Name:    name,
		Cluster: cluster,
		Params:  params,
	}, nil
}

func noParams(*domain.RawParams) (domain.OperationParams, error) {
	return domain.NoParams{}, nil
}

func tokenParams(p *domain.RawParams) (domain.OperationParams, error) {
	token, err := decodeToken(*p.Token)
	if err != nil {
		return nil, err
	}
	return domain.TokenParams{Token: token}, nil
}

func swapParams(p *domain.RawParams) (domain.OperationParams, error) {
	token, err := decodeToken(*p.Token)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(*p.Amount)
	if err != nil {
		return nil, err
	}
	style, err := domain.ParseSwapStyle(*p.Style)
	if err != nil {
		return nil, domain.ErrInvalidStyle.WithDetails(err.Error())
	}
	return domain.SwapParams{Token: token, Amount: amount, Style: style}, nil
}

func optionalCreator(p *domain.RawParams) (domain.OperationParams, error) {
	if p.Creator == nil {
		return domain.WhitelistParams{}, nil
	}
	return requiredCreator(p)
}

func requiredCreator(p *domain.RawParams) (domain.OperationParams, error) {
	creator, err := domain.DecodePublicKey(*p.Creator)
	if err != nil {
		return nil, domain.ErrInvalidCreator.WithDetails(err.Error()).WithCause(err)
	}
	return domain.WhitelistParams{Creator: &creator}, nil
}

func authorityParams(p *domain.RawParams) (domain.OperationParams, error) {
	admin, err := domain.DecodePublicKey(*p.NewAdmin)
	if err != nil {
		return nil, domain.ErrInvalidNewAdmin.WithDetails(err.Error()).WithCause(err)
	}
	return domain.AuthorityParams{NewAdmin: admin}, nil
}

func decodeToken(s string) (domain.PublicKey, error) {
	token, err := domain.DecodePublicKey(s)
	if err != nil {
		return token, domain.ErrInvalidToken.WithDetails(err.Error()).WithCause(err)
	}
	return token, nil
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidAmount.WithDetails(strconv.Quote(s)).WithCause(err)
	}
	if amount == 0 {
		return 0, domain.ErrInvalidAmount.WithDetails("amount must be greater than zero")
	}
	return amount, nil
}
