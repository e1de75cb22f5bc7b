package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultPrompt is printed before every line.
const DefaultPrompt = "curvectl> "

// ErrUnterminatedQuote is returned by Split for an unbalanced quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Executor runs one line's arguments as a command.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt overrides DefaultPrompt.
func WithPrompt(p string) Option {
	return func(r *REPL) { r.prompt = p }
}

// WithHistory sets the history store. Without it history lives in memory.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// New creates a REPL reading from in and writing prompts and line errors
// to out. Lines are run by exec; completer supplies suggestions for
// unknown commands.
func New(in io.Reader, out io.Writer, exec Executor, completer *Completer, opts ...Option) *REPL {
	r := &REPL{
		input:     in,
		output:    out,
		prompt:    DefaultPrompt,
		exec:      exec,
		completer: completer,
		history:   NewHistory("", DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the loop. It returns nil on exit, quit or end of input, and
// ctx.Err() once ctx is done. History is loaded before the first prompt
// and saved on return.
func (r *REPL) Run(ctx context.Context) (err error) {
	if err := r.history.Load(); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	defer func() {
		if saveErr := r.history.Save(); saveErr != nil && err == nil {
			err = fmt.Errorf("save history: %w", saveErr)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.output, r.prompt)

		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		line = strings.TrimSpace(line)

		if line != "" {
			if done := r.handle(ctx, line); done {
				return nil
			}
		}

		if errors.Is(readErr, io.EOF) {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// handle runs one non-empty line and reports whether the loop should stop.
// exit and quit are not recorded in history.
func (r *REPL) handle(ctx context.Context, line string) bool {
	if line == "exit" || line == "quit" {
		return true
	}
	r.history.Add(line)

	if line == "history" {
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	args, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return false
	}

	if !r.completer.Known(args[0]) {
		fmt.Fprintf(r.output, "error: unknown command %q\n", args[0])
		if s := r.completer.Complete(args[0]); len(s) > 0 {
			fmt.Fprintf(r.output, "did you mean: %s\n", strings.Join(s, ", "))
		}
		return false
	}

	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
	}
	return false
}

// Split breaks line into arguments on whitespace. Single or double quotes
// group words, so a token name may contain spaces.
func Split(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
	)
	for _, ch := range line {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
				continue
			}
			current.WriteRune(ch)
		case ch == '"' || ch == '\'':
			quote = ch
			inArg = true
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(ch)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
