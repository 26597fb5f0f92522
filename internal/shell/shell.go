// Package shell runs the interactive read-execute loop.
package shell

import (
	"bufio"
	"context"
	"io"
	"sync"

	"moneytracker/internal/command"
	"moneytracker/internal/console"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
)

// Executor runs one validated request.
type Executor interface {
	Execute(ctx context.Context, req command.Request) (services.Result, error)
}

// Shell reads commands from an input stream and prints their results. Commands
// run one at a time on the caller's goroutine; a single background goroutine
// only reads lines.
type Shell struct {
	in      io.Reader
	printer *console.Printer
	interp  *command.Interpreter
	exec    Executor
	logger  *log.Logger

	once    sync.Once
	lines   chan string
	readErr error
}

type Option func(*Shell)

func WithLogger(l *log.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentShell)
		}
	}
}

func New(in io.Reader, printer *console.Printer, interp *command.Interpreter, exec Executor, opts ...Option) *Shell {
	s := &Shell{
		in:      in,
		printer: printer,
		interp:  interp,
		exec:    exec,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// start launches the reader goroutine once. The channel is closed at end of
// input; readErr is set before that.
func (s *Shell) start(ctx context.Context) {
	s.once.Do(func() {
		s.lines = make(chan string)
		go func() {
			defer close(s.lines)
			sc := bufio.NewScanner(s.in)
			for sc.Scan() {
				select {
				case s.lines <- sc.Text():
				case <-ctx.Done():
					return
				}
			}
			s.readErr = sc.Err()
		}()
	})
}

// next waits for the next input line. ok is false at end of input or when
// ctx is done.
func (s *Shell) next(ctx context.Context) (line string, ok bool) {
	s.start(ctx)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok = <-s.lines:
		return line, ok
	}
}

// Run greets the user and processes commands until exit, end of input or
// ctx cancellation. It returns an error only when reading input fails.
func (s *Shell) Run(ctx context.Context) error {
	s.printer.Welcome()
	for {
		s.printer.Prompt()
		line, ok := s.next(ctx)
		if !ok {
			if ctx.Err() != nil {
				s.logger.Info("Shell interrupted", log.FieldOperation, log.OpShutdown)
			}
			s.printer.Goodbye()
			return s.inputErr(ctx)
		}
		if s.RunLine(ctx, line) {
			return nil
		}
	}
}

func (s *Shell) inputErr(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	return s.readErr
}

// RunLine interprets and executes one command line and reports whether the
// session should end. A clear asks for confirmation on the input stream.
func (s *Shell) RunLine(ctx context.Context, line string) (exit bool) {
	req, err := s.interp.Interpret(line)
	if err != nil {
		s.logger.Debug("Command rejected", log.FieldError, err)
		s.printer.Error(err)
		return false
	}
	s.logger.Debug("Command received", log.FieldOperation, req.Op.String())

	if req.Op == command.OpClear {
		confirmed, answered := s.confirmClear(ctx)
		if !answered {
			s.printer.Goodbye()
			return true
		}
		if confirmed == nil {
			return false
		}
		req.Confirmed = *confirmed
	}

	res, err := s.exec.Execute(ctx, req)
	if err != nil {
		s.printer.Error(err)
		return false
	}
	s.printer.Result(req, res)
	return res.Exit
}

// confirmClear asks for Y or N. confirmed is nil after an invalid answer;
// answered is false when input ended first.
func (s *Shell) confirmClear(ctx context.Context) (confirmed *bool, answered bool) {
	s.printer.ConfirmClear()
	s.printer.Prompt()
	answer, ok := s.next(ctx)
	if !ok {
		return nil, false
	}
	yes, err := command.ParseConfirmation(answer)
	if err != nil {
		s.printer.Error(err)
		return nil, true
	}
	return &yes, true
}
