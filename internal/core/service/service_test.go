package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/telemetry/logger"
)

const testToken = "5j4uB4mDPPCULa2k1ghWwpafQgBKPGqvKzQyvH3w927R"

// call records one operation invocation.
type call struct {
	Name   string
	Token  domain.PublicKey
	Amount uint64
	Style  domain.SwapStyle
	Extra  string
}

// fakeLedger implements Connector and Operations, recording every call.
type fakeLedger struct {
	mu         sync.Mutex
	connects   []domain.ClusterContext
	calls      []call
	connectErr error
	opErr      error
}

func (f *fakeLedger) Connect(_ context.Context, cluster domain.ClusterContext) (Operations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, cluster)
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f, nil
}

func (f *fakeLedger) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.opErr
}

func (f *fakeLedger) ConfigProject(context.Context) error {
	return f.record(call{Name: "configProject"})
}
func (f *fakeLedger) LaunchToken(context.Context) error { return f.record(call{Name: "launchToken"}) }

func (f *fakeLedger) AddWhitelist(_ context.Context, creator *domain.PublicKey) error {
	extra := "signer"
	if creator != nil {
		extra = creator.String()
	}
	return f.record(call{Name: "addWl", Extra: extra})
}

func (f *fakeLedger) RemoveWhitelist(_ context.Context, creator domain.PublicKey) error {
	return f.record(call{Name: "removeWl", Extra: creator.String()})
}

func (f *fakeLedger) Swap(_ context.Context, token domain.PublicKey, amount uint64, style domain.SwapStyle) error {
	return f.record(call{Name: "swap", Token: token, Amount: amount, Style: style})
}

func (f *fakeLedger) SimulateSwap(_ context.Context, token domain.PublicKey, amount uint64, style domain.SwapStyle) error {
	return f.record(call{Name: "simulateSwap", Token: token, Amount: amount, Style: style})
}

func (f *fakeLedger) Withdraw(_ context.Context, token domain.PublicKey) error {
	return f.record(call{Name: "withdraw", Token: token})
}

func (f *fakeLedger) TransferFee(_ context.Context, token domain.PublicKey) error {
	return f.record(call{Name: "transferFee", Token: token})
}

func (f *fakeLedger) Migrate(_ context.Context, token domain.PublicKey) error {
	return f.record(call{Name: "migrate", Token: token})
}

func (f *fakeLedger) NominateAuthority(_ context.Context, newAdmin domain.PublicKey) error {
	return f.record(call{Name: "nominateAuthority", Extra: newAdmin.String()})
}

func (f *fakeLedger) AcceptAuthority(context.Context) error {
	return f.record(call{Name: "acceptAuthority"})
}

// fakeRecorder captures recorder events.
type fakeRecorder struct {
	stages   []domain.Stage
	outcomes []string
}

func (r *fakeRecorder) StageReached(_ string, s domain.Stage) { r.stages = append(r.stages, s) }
func (r *fakeRecorder) CommandFinished(_ string, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func str(s string) *string { return &s }

func mustKey(t *testing.T, s string) domain.PublicKey {
	t.Helper()
	pk, err := domain.DecodePublicKey(s)
	if err != nil {
		t.Fatalf("DecodePublicKey(%q) error = %v", s, err)
	}
	return pk
}

func TestResolve_Defaults(t *testing.T) {
	got := Resolve("", "", "")
	want := domain.ClusterContext{Cluster: "devnet", RPCURL: "DevNetRPC", KeypairPath: "keypairt address"}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolve_Overrides(t *testing.T) {
	got := Resolve("mainnet-beta", "/keys/id.json", "https://rpc.example.com")
	want := domain.ClusterContext{
		Cluster:     domain.ClusterMainnetBeta,
		RPCURL:      "https://rpc.example.com",
		KeypairPath: "/keys/id.json",
	}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolve_UnknownClusterPassesThrough(t *testing.T) {
	got := Resolve("localnet", "", "")
	if got.Cluster != "localnet" {
		t.Errorf("Cluster = %q, want verbatim %q", got.Cluster, "localnet")
	}
	if !got.Complete() {
		t.Error("context should be complete")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	inputs := [][3]string{
		{"", "", ""},
		{"testnet", "k.json", "http://localhost:8899"},
		{"weird", "", "x"},
	}
	for _, in := range inputs {
		a := Resolve(in[0], in[1], in[2])
		b := Resolve(in[0], in[1], in[2])
		if a != b {
			t.Errorf("Resolve(%v) not idempotent: %+v != %+v", in, a, b)
		}
	}
}

func TestValidate(t *testing.T) {
	cluster := domain.DefaultClusterContext()
	token := mustKey(t, testToken)

	tests := []struct {
		name    string
		command domain.CommandName
		raw     domain.RawParams
		want    domain.OperationParams
		wantErr *domain.DomainError
	}{
		{"config", domain.CommandConfig, domain.RawParams{}, domain.NoParams{}, nil},
		{"launch ignores extra", domain.CommandLaunch, domain.RawParams{Token: str("junk")}, domain.NoParams{}, nil},
		{"addWl signer", domain.CommandAddWl, domain.RawParams{}, domain.WhitelistParams{}, nil},
		{"addWl bad creator", domain.CommandAddWl, domain.RawParams{Creator: str("bad")}, nil, domain.ErrInvalidCreator},
		{"removeWl missing creator", domain.CommandRemoveWl, domain.RawParams{}, nil, domain.ErrMissingCreator},
		{
			"swap ok", domain.CommandSwap,
			domain.RawParams{Token: str(testToken), Amount: str("2000000000"), Style: str("0")},
			domain.SwapParams{Token: token, Amount: 2000000000, Style: domain.SwapBuy}, nil,
		},
		{
			"simulate sell", domain.CommandSimulate,
			domain.RawParams{Token: str(testToken), Amount: str("5"), Style: str("1")},
			domain.SwapParams{Token: token, Amount: 5, Style: domain.SwapSell}, nil,
		},
		{"swap missing token", domain.CommandSwap, domain.RawParams{Amount: str("1"), Style: str("0")}, nil, domain.ErrMissingToken},
		{"swap missing amount", domain.CommandSwap, domain.RawParams{Token: str(testToken), Style: str("0")}, nil, domain.ErrMissingAmount},
		{"swap missing style", domain.CommandSwap, domain.RawParams{Token: str(testToken), Amount: str("1")}, nil, domain.ErrMissingStyle},
		{"swap missing all", domain.CommandSwap, domain.RawParams{}, nil, domain.ErrMissingToken},
		{"swap missing token and amount", domain.CommandSwap, domain.RawParams{Style: str("0")}, nil, domain.ErrMissingToken},
		{"swap missing amount and style", domain.CommandSwap, domain.RawParams{Token: str(testToken)}, nil, domain.ErrMissingAmount},
		{
			"presence before shape", domain.CommandSwap,
			domain.RawParams{Token: str("not-a-key"), Style: str("0")}, nil, domain.ErrMissingAmount,
		},
		{
			"invalid token", domain.CommandSwap,
			domain.RawParams{Token: str("not-a-key"), Amount: str("1"), Style: str("0")}, nil, domain.ErrInvalidToken,
		},
		{
			"invalid amount", domain.CommandSwap,
			domain.RawParams{Token: str(testToken), Amount: str("1.5"), Style: str("0")}, nil, domain.ErrInvalidAmount,
		},
		{
			"negative amount", domain.CommandSwap,
			domain.RawParams{Token: str(testToken), Amount: str("-3"), Style: str("0")}, nil, domain.ErrInvalidAmount,
		},
		{
			"zero amount", domain.CommandSwap,
			domain.RawParams{Token: str(testToken), Amount: str("0"), Style: str("0")}, nil, domain.ErrInvalidAmount,
		},
		{
			"invalid style", domain.CommandSwap,
			domain.RawParams{Token: str(testToken), Amount: str("1"), Style: str("2")}, nil, domain.ErrInvalidStyle,
		},
		{
			"token checked before amount shape", domain.CommandSwap,
			domain.RawParams{Token: str("bad"), Amount: str("bad"), Style: str("bad")}, nil, domain.ErrInvalidToken,
		},
		{"withdraw", domain.CommandWithdraw, domain.RawParams{Token: str(testToken)}, domain.TokenParams{Token: token}, nil},
		{"withdraw missing token", domain.CommandWithdraw, domain.RawParams{}, nil, domain.ErrMissingToken},
		{"migrate missing token", domain.CommandMigrate, domain.RawParams{Amount: str("1")}, nil, domain.ErrMissingToken},
		{"transferFee", domain.CommandTransferFee, domain.RawParams{Token: str(testToken)}, domain.TokenParams{Token: token}, nil},
		{"empty token given", domain.CommandMigrate, domain.RawParams{Token: str("")}, nil, domain.ErrInvalidToken},
		{
			"nominateAuthority", domain.CommandNominateAuthority,
			domain.RawParams{NewAdmin: str(testToken)}, domain.AuthorityParams{NewAdmin: token}, nil,
		},
		{"nominateAuthority missing admin", domain.CommandNominateAuthority, domain.RawParams{Token: str(testToken)}, nil, domain.ErrMissingNewAdmin},
		{"nominateAuthority invalid admin", domain.CommandNominateAuthority, domain.RawParams{NewAdmin: str("0OIl")}, nil, domain.ErrInvalidNewAdmin},
		{"nominateAuthority empty admin", domain.CommandNominateAuthority, domain.RawParams{NewAdmin: str("")}, nil, domain.ErrInvalidNewAdmin},
		{"acceptAuthority", domain.CommandAcceptAuthority, domain.RawParams{NewAdmin: str("junk")}, domain.NoParams{}, nil},
		{"unknown command", "burn", domain.RawParams{}, nil, domain.ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Validate(tt.command, cluster, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
				}
				if req != nil {
					t.Error("no request should be produced on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
			if req.Name != tt.command || req.Cluster != cluster {
				t.Errorf("request header = %s/%+v", req.Name, req.Cluster)
			}
			if !reflect.DeepEqual(req.Params, tt.want) {
				t.Errorf("Params = %#v, want %#v", req.Params, tt.want)
			}
		})
	}
}

func TestValidate_CreatorDecoded(t *testing.T) {
	req, err := Validate(domain.CommandRemoveWl, domain.DefaultClusterContext(), domain.RawParams{Creator: str(testToken)})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	p := req.Params.(domain.WhitelistParams)
	if p.Creator == nil || p.Creator.String() != testToken {
		t.Errorf("Creator = %v, want %s", p.Creator, testToken)
	}
}

func TestDispatcher_ExactlyOneCall(t *testing.T) {
	token := mustKey(t, testToken)

	tests := []struct {
		req  *domain.CommandRequest
		want call
	}{
		{&domain.CommandRequest{Name: domain.CommandConfig, Params: domain.NoParams{}}, call{Name: "configProject"}},
		{&domain.CommandRequest{Name: domain.CommandLaunch, Params: domain.NoParams{}}, call{Name: "launchToken"}},
		{&domain.CommandRequest{Name: domain.CommandAddWl, Params: domain.WhitelistParams{}}, call{Name: "addWl", Extra: "signer"}},
		{&domain.CommandRequest{Name: domain.CommandRemoveWl, Params: domain.WhitelistParams{Creator: &token}}, call{Name: "removeWl", Extra: testToken}},
		{
			&domain.CommandRequest{Name: domain.CommandSwap, Params: domain.SwapParams{Token: token, Amount: 2000000000, Style: domain.SwapBuy}},
			call{Name: "swap", Token: token, Amount: 2000000000, Style: domain.SwapBuy},
		},
		{
			&domain.CommandRequest{Name: domain.CommandSimulate, Params: domain.SwapParams{Token: token, Amount: 7, Style: domain.SwapSell}},
			call{Name: "simulateSwap", Token: token, Amount: 7, Style: domain.SwapSell},
		},
		{&domain.CommandRequest{Name: domain.CommandWithdraw, Params: domain.TokenParams{Token: token}}, call{Name: "withdraw", Token: token}},
		{&domain.CommandRequest{Name: domain.CommandTransferFee, Params: domain.TokenParams{Token: token}}, call{Name: "transferFee", Token: token}},
		{&domain.CommandRequest{Name: domain.CommandMigrate, Params: domain.TokenParams{Token: token}}, call{Name: "migrate", Token: token}},
		{
			&domain.CommandRequest{Name: domain.CommandNominateAuthority, Params: domain.AuthorityParams{NewAdmin: token}},
			call{Name: "nominateAuthority", Extra: testToken},
		},
		{&domain.CommandRequest{Name: domain.CommandAcceptAuthority, Params: domain.NoParams{}}, call{Name: "acceptAuthority"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.req.Name), func(t *testing.T) {
			ledger := &fakeLedger{}
			tt.req.Cluster = domain.DefaultClusterContext()

			if err := NewDispatcher(ledger).Dispatch(context.Background(), tt.req); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if len(ledger.connects) != 1 || ledger.connects[0] != tt.req.Cluster {
				t.Errorf("connects = %+v, want exactly one with request cluster", ledger.connects)
			}
			if len(ledger.calls) != 1 {
				t.Fatalf("calls = %+v, want exactly one", ledger.calls)
			}
			if ledger.calls[0] != tt.want {
				t.Errorf("call = %+v, want %+v", ledger.calls[0], tt.want)
			}
		})
	}
}

func TestDispatcher_ParamsMismatchNeverConnects(t *testing.T) {
	for _, name := range []domain.CommandName{domain.CommandSwap, domain.CommandNominateAuthority} {
		t.Run(string(name), func(t *testing.T) {
			ledger := &fakeLedger{}
			req := &domain.CommandRequest{Name: name, Params: domain.NoParams{}}

			err := NewDispatcher(ledger).Dispatch(context.Background(), req)
			if !errors.Is(err, domain.ErrParamsMismatch) {
				t.Fatalf("Dispatch() error = %v, want ErrParamsMismatch", err)
			}
			if len(ledger.connects) != 0 || len(ledger.calls) != 0 {
				t.Error("mismatched request must not reach the ledger")
			}
		})
	}
}

func TestDispatcher_ConnectFailureSkipsOperation(t *testing.T) {
	connectErr := domain.ErrRPCUnreachable.Wrap(fmt.Errorf("dial tcp: refused"))
	ledger := &fakeLedger{connectErr: connectErr}
	req := &domain.CommandRequest{Name: domain.CommandLaunch, Params: domain.NoParams{}}

	err := NewDispatcher(ledger).Dispatch(context.Background(), req)
	if err != connectErr {
		t.Errorf("Dispatch() error = %v, want connector error unchanged", err)
	}
	if len(ledger.calls) != 0 {
		t.Error("operation must not run after connect failure")
	}
}

func TestDispatcher_OperationErrorVerbatim(t *testing.T) {
	opErr := errors.New("custom program error: 0x1771")
	ledger := &fakeLedger{opErr: opErr}
	req := &domain.CommandRequest{Name: domain.CommandConfig, Params: domain.NoParams{}}

	if err := NewDispatcher(ledger).Dispatch(context.Background(), req); err != opErr {
		t.Errorf("Dispatch() error = %v, want %v unchanged", err, opErr)
	}
}

func TestPipeline_SwapDispatchesExactArguments(t *testing.T) {
	ledger := &fakeLedger{}
	rec := &fakeRecorder{}
	p := NewPipeline(NewDispatcher(ledger), WithRecorder(rec))

	trace, err := p.Run(context.Background(), domain.Invocation{
		Command: domain.CommandSwap,
		Params:  domain.RawParams{Token: str(testToken), Amount: str("2000000000"), Style: str("0")},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := call{Name: "swap", Token: mustKey(t, testToken), Amount: 2000000000, Style: 0}
	if len(ledger.calls) != 1 || ledger.calls[0] != want {
		t.Errorf("calls = %+v, want [%+v]", ledger.calls, want)
	}
	wantStages := []domain.Stage{
		domain.StageParsed, domain.StageResolved, domain.StageValidated,
		domain.StageDispatched, domain.StageCompleted,
	}
	if !reflect.DeepEqual(trace.Stages, wantStages) {
		t.Errorf("Stages = %v, want %v", trace.Stages, wantStages)
	}
	if !reflect.DeepEqual(rec.stages, wantStages) {
		t.Errorf("recorded stages = %v, want %v", rec.stages, wantStages)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != OutcomeCompleted {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
}

func TestPipeline_ValidationFailureHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name    string
		inv     domain.Invocation
		wantErr error
	}{
		{
			"swap without amount",
			domain.Invocation{Command: domain.CommandSwap, Params: domain.RawParams{Token: str(testToken), Style: str("0")}},
			domain.ErrMissingAmount,
		},
		{
			"swap without token and amount",
			domain.Invocation{Command: domain.CommandSwap, Params: domain.RawParams{Style: str("1")}},
			domain.ErrMissingToken,
		},
		{"withdraw without token", domain.Invocation{Command: domain.CommandWithdraw}, domain.ErrMissingToken},
		{"migrate without token", domain.Invocation{Command: domain.CommandMigrate}, domain.ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			rec := &fakeRecorder{}
			trace, err := NewPipeline(NewDispatcher(ledger), WithRecorder(rec)).Run(context.Background(), tt.inv)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if len(ledger.connects) != 0 || len(ledger.calls) != 0 {
				t.Errorf("ledger touched: connects=%d calls=%d", len(ledger.connects), len(ledger.calls))
			}
			if trace.Final() != domain.StageFailed {
				t.Errorf("Final() = %s, want failed", trace.Final())
			}
			if trace.Reached(domain.StageValidated) || trace.Reached(domain.StageDispatched) {
				t.Errorf("Stages = %v must stop before validated", trace.Stages)
			}
			if len(rec.outcomes) != 1 || rec.outcomes[0] != OutcomeValidation {
				t.Errorf("outcomes = %v, want [%s]", rec.outcomes, OutcomeValidation)
			}
		})
	}
}

func TestPipeline_UngatedCommandsAlwaysDispatch(t *testing.T) {
	shared := []struct{ env, keypair, rpc string }{
		{"", "", ""},
		{"mainnet-beta", "/k.json", "https://api.mainnet-beta.solana.com"},
		{"not-a-cluster", "", "whatever"},
	}
	for _, cmd := range []domain.CommandName{domain.CommandConfig, domain.CommandLaunch, domain.CommandAddWl} {
		for _, s := range shared {
			ledger := &fakeLedger{}
			trace, err := NewPipeline(NewDispatcher(ledger)).Run(context.Background(), domain.Invocation{
				Command: cmd, Env: s.env, KeypairPath: s.keypair, RPCURL: s.rpc,
			})
			if err != nil {
				t.Fatalf("%s %+v: Run() error = %v", cmd, s, err)
			}
			if !trace.Reached(domain.StageDispatched) {
				t.Errorf("%s %+v: did not reach dispatched: %v", cmd, s, trace.Stages)
			}
			if len(ledger.calls) != 1 {
				t.Errorf("%s %+v: calls = %d, want 1", cmd, s, len(ledger.calls))
			}
		}
	}
}

func TestPipeline_DefaultContextReachesConnector(t *testing.T) {
	ledger := &fakeLedger{}
	trace, err := NewPipeline(NewDispatcher(ledger)).Run(context.Background(), domain.Invocation{Command: domain.CommandConfig})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := domain.DefaultClusterContext()
	if trace.Cluster != want {
		t.Errorf("trace cluster = %+v, want %+v", trace.Cluster, want)
	}
	if len(ledger.connects) != 1 || ledger.connects[0] != want {
		t.Errorf("connects = %+v, want [%+v]", ledger.connects, want)
	}
}

func TestPipeline_CollaboratorFailure(t *testing.T) {
	tests := []struct {
		name        string
		ledger      *fakeLedger
		wantOutcome string
	}{
		{"configuration", &fakeLedger{connectErr: domain.ErrKeypairInvalid}, OutcomeConfiguration},
		{"operation", &fakeLedger{opErr: domain.ErrTokenNotFound}, OutcomeOperation},
		{"unclassified", &fakeLedger{opErr: errors.New("boom")}, OutcomeOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			trace, err := NewPipeline(NewDispatcher(tt.ledger), WithRecorder(rec)).Run(context.Background(),
				domain.Invocation{Command: domain.CommandWithdraw, Params: domain.RawParams{Token: str(testToken)}})
			if err == nil {
				t.Fatal("Run() should fail")
			}
			if !trace.Reached(domain.StageDispatched) || trace.Final() != domain.StageFailed {
				t.Errorf("Stages = %v", trace.Stages)
			}
			if len(rec.outcomes) != 1 || rec.outcomes[0] != tt.wantOutcome {
				t.Errorf("outcomes = %v, want %s", rec.outcomes, tt.wantOutcome)
			}
		})
	}
}

func TestPipeline_LogsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		ledger   *fakeLedger
		inv      domain.Invocation
		wantLine string
		wantCode string
	}{
		{
			"validation", &fakeLedger{},
			domain.Invocation{Command: domain.CommandWithdraw},
			`"msg":"validation failed"`, `"code":"CV-ARG-4001"`,
		},
		{
			"dispatch", &fakeLedger{opErr: domain.ErrTokenNotFound},
			domain.Invocation{Command: domain.CommandWithdraw, Params: domain.RawParams{Token: str(testToken)}},
			`"msg":"dispatch failed"`, `"code":"CV-OPS-6001"`,
		},
		{
			"unclassified", &fakeLedger{opErr: errors.New("boom")},
			domain.Invocation{Command: domain.CommandWithdraw, Params: domain.RawParams{Token: str(testToken)}},
			`"msg":"dispatch failed"`, `"code":""`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := logger.New(logger.Config{Level: "debug", Format: logger.FormatJSON, Output: &buf})
			if err != nil {
				t.Fatalf("logger.New() error = %v", err)
			}
			ctx := logger.WithLogger(context.Background(), log)

			if _, err := NewPipeline(NewDispatcher(tt.ledger)).Run(ctx, tt.inv); err == nil {
				t.Fatal("Run() should fail")
			}

			var found bool
			for _, line := range strings.Split(buf.String(), "\n") {
				if strings.Contains(line, tt.wantLine) {
					found = true
					if !strings.Contains(line, tt.wantCode) {
						t.Errorf("log line %s lacks %s", line, tt.wantCode)
					}
				}
			}
			if !found {
				t.Errorf("no %s line in %s", tt.wantLine, buf.String())
			}
		})
	}
}
