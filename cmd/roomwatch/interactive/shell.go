// Package interactive provides the readline command shell of roomwatch.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/roomwatch/roomwatch-go/internal/command"
)

// Executor runs one command line. command.Dispatcher implements it.
type Executor interface {
	Execute(ctx context.Context, line string) error
}

// Shell is an interactive command shell.
type Shell struct {
	rl   *readline.Instance
	exec Executor
}

// New creates a shell. Attach a command executor before calling Run.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "roomwatch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output and delivered messages.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Attach sets the executor that runs entered lines.
func (s *Shell) Attach(exec Executor) {
	s.exec = exec
}

// Run reads commands until quit, EOF or ctx is done, then calls cancel.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer cancel()

	fmt.Fprintln(s.rl.Stdout(), "Type 'help' for available commands.")

	for {
		if ctx.Err() != nil {
			return
		}
		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		if quit := RunLine(ctx, s.exec, s.rl.Stdout(), line); quit {
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}
	}
}

// RunLine executes one line and prints any error to out. It reports whether
// the shell should exit.
func RunLine(ctx context.Context, exec Executor, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || exec == nil {
		return false
	}
	err := exec.Execute(ctx, line)
	switch {
	case err == nil:
		return false
	case errors.Is(err, command.ErrQuit):
		return true
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
		return false
	}
}
