package ledger

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/yndnr/curvectl/internal/cli/output"
	"github.com/yndnr/curvectl/internal/core/domain"
)

// Submitter hands a built instruction to whatever signs and sends it.
type Submitter interface {
	Submit(ctx context.Context, env *Envelope) error
}

// Envelope is an unsigned instruction plus the context an external signer
// needs to send it.
type Envelope struct {
	RequestID        string           `json:"request_id" yaml:"request_id"`
	Cluster          string           `json:"cluster" yaml:"cluster"`
	Endpoint         string           `json:"endpoint" yaml:"endpoint"`
	Instruction      string           `json:"instruction" yaml:"instruction"`
	ProgramID        domain.PublicKey `json:"program_id" yaml:"program_id"`
	Signer           domain.PublicKey `json:"signer" yaml:"signer"`
	Accounts         []AccountMeta    `json:"accounts" yaml:"accounts"`
	Data             string           `json:"data" yaml:"data"`
	AccountsComplete bool             `json:"accounts_complete" yaml:"accounts_complete"`
	Args             any              `json:"args,omitempty" yaml:"args,omitempty"`
	// Result carries locally computed output, such as a simulated quote.
	Result any `json:"result,omitempty" yaml:"result,omitempty"`
}

// Emitter writes envelopes to w in the configured output format.
type Emitter struct {
	mu     sync.Mutex
	w      io.Writer
	format output.Format
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer, format output.Format) *Emitter {
	return &Emitter{w: w, format: format}
}

// Submit implements Submitter.
func (e *Emitter) Submit(_ context.Context, env *Envelope) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.format == output.FormatJSON || e.format == output.FormatYAML {
		err = output.NewFormatter(e.format, false).Format(e.w, env)
	} else {
		err = e.writeTable(env)
	}
	if err != nil {
		return domain.ErrSubmit.Wrap(fmt.Errorf("write envelope: %w", err))
	}
	return nil
}

func (e *Emitter) writeTable(env *Envelope) error {
	summary := &output.Table{}
	summary.SetHeaders("FIELD", "VALUE")
	summary.AddRow("request_id", env.RequestID)
	summary.AddRow("cluster", env.Cluster)
	summary.AddRow("endpoint", env.Endpoint)
	summary.AddRow("instruction", env.Instruction)
	summary.AddRow("program_id", env.ProgramID.String())
	summary.AddRow("signer", env.Signer.String())
	summary.AddRow("data", env.Data)
	summary.AddRow("accounts_complete", strconv.FormatBool(env.AccountsComplete))
	if err := summary.Render(e.w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(e.w); err != nil {
		return err
	}

	accounts := &output.Table{}
	accounts.SetHeaders("#", "NAME", "PUBKEY", "SIGNER", "WRITABLE")
	for i, a := range env.Accounts {
		accounts.AddRow(strconv.Itoa(i), a.Name, a.Pubkey.String(),
			strconv.FormatBool(a.Signer), strconv.FormatBool(a.Writable))
	}
	if err := accounts.Render(e.w); err != nil {
		return err
	}

	if env.Result != nil {
		if _, err := fmt.Fprintln(e.w); err != nil {
			return err
		}
		return output.NewFormatter(output.FormatTable, false).Format(e.w, env.Result)
	}
	return nil
}
