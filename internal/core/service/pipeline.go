package service

import (
	"context"
	"time"

	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/telemetry/logger"
)

// Recorder observes pipeline progress. Implementations must not block.
type Recorder interface {
	StageReached(command string, stage domain.Stage)
	CommandFinished(command string, outcome string, elapsed time.Duration)
}

// Outcome labels reported to the Recorder.
const (
	OutcomeCompleted     = "completed"
	OutcomeValidation    = "validation_failed"
	OutcomeConfiguration = "configuration_failed"
	OutcomeOperation     = "operation_failed"
)

// Trace records the stages one invocation went through.
type Trace struct {
	Command domain.CommandName
	Cluster domain.ClusterContext
	Request *domain.CommandRequest
	Stages  []domain.Stage
}

// Final returns the last stage reached.
func (t *Trace) Final() domain.Stage {
	if len(t.Stages) == 0 {
		return domain.StageParsed
	}
	return t.Stages[len(t.Stages)-1]
}

// Reached reports whether the invocation passed through s.
func (t *Trace) Reached(s domain.Stage) bool {
	for _, st := range t.Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Pipeline runs one invocation through resolution, validation and dispatch.
type Pipeline struct {
	dispatcher *Dispatcher
	recorder   Recorder
	now        func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRecorder sets the stage recorder.
func WithRecorder(r Recorder) PipelineOption {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// NewPipeline creates a Pipeline dispatching through d.
func NewPipeline(d *Dispatcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		dispatcher: d,
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes inv. It returns the trace in every case; the error is the
// validation failure or the collaborator failure, unchanged.
func (p *Pipeline) Run(ctx context.Context, inv domain.Invocation) (*Trace, error) {
	start := p.now()
	cmd := string(inv.Command)
	ctx = logger.WithCommand(ctx, cmd)
	log := logger.L(ctx)

	trace := &Trace{Command: inv.Command}
	reach := func(s domain.Stage) {
		trace.Stages = append(trace.Stages, s)
		p.recorder.StageReached(cmd, s)
		log.Debug("stage reached", "stage", s.String())
	}
	fail := func(err error, outcome string) (*Trace, error) {
		reach(domain.StageFailed)
		p.recorder.CommandFinished(cmd, outcome, p.now().Sub(start))
		return trace, err
	}

	reach(domain.StageParsed)

	trace.Cluster = Resolve(inv.Env, inv.KeypairPath, inv.RPCURL)
	log.Info("cluster resolved",
		"cluster", trace.Cluster.Cluster.String(),
		"rpc_url", trace.Cluster.RPCURL,
		"keypair_path", trace.Cluster.KeypairPath,
	)
	if !trace.Cluster.Cluster.Known() {
		log.Warn("unknown cluster name, passing through", "cluster", trace.Cluster.Cluster.String())
	}
	reach(domain.StageResolved)

	req, err := Validate(inv.Command, trace.Cluster, inv.Params)
	if err != nil {
		log.Debug("validation failed", "code", domain.GetErrorCode(err), "error", err)
		return fail(err, OutcomeValidation)
	}
	trace.Request = req
	reach(domain.StageValidated)

	reach(domain.StageDispatched)
	if err := p.dispatcher.Dispatch(ctx, req); err != nil {
		log.Debug("dispatch failed", "code", domain.GetErrorCode(err), "error", err)
		return fail(err, outcomeOf(err))
	}

	reach(domain.StageCompleted)
	p.recorder.CommandFinished(cmd, OutcomeCompleted, p.now().Sub(start))
	return trace, nil
}

func outcomeOf(err error) string {
	switch domain.ExitCode(err) {
	case domain.ExitValidation:
		return OutcomeValidation
	case domain.ExitConfiguration:
		return OutcomeConfiguration
	default:
		return OutcomeOperation
	}
}

type nopRecorder struct{}

func (nopRecorder) StageReached(string, domain.Stage)             {}
func (nopRecorder) CommandFinished(string, string, time.Duration) {}
