// Package console runs the navigation engine as an interactive terminal session.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/transport"
)

// DefaultUserID identifies the single console user.
const DefaultUserID int64 = 1

const separator = "--------------------"

// LineReader reads one command per call. io.EOF and readline.ErrInterrupt end the session.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Config configures the terminal session.
type Config struct {
	Prompt      string
	HistoryFile string
	UserID      int64
}

// NewReadline opens a readline instance on the terminal.
func NewReadline(cfg Config) (*readline.Instance, error) {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = "Command: "
	}
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// Console reads commands and prints replies.
type Console struct {
	proc   *transport.Processor
	in     LineReader
	out    io.Writer
	userID int64
}

// New returns a console session for userID. A zero id selects DefaultUserID.
func New(proc *transport.Processor, in LineReader, out io.Writer, userID int64) *Console {
	if userID == 0 {
		userID = DefaultUserID
	}
	return &Console{proc: proc, in: in, out: out, userID: userID}
}

// Run loops until EOF, interrupt or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	defer c.in.Close()
	ctx = logger.WithTransport(logger.WithUser(ctx, c.userID), "console")
	logger.Info(ctx, "console", "session.start")

	replies, _ := c.proc.Open(ctx, transport.Update{UserID: c.userID})
	c.print(replies)

	lines := make(chan readResult, 1)
	for {
		go func() {
			line, err := c.in.Readline()
			lines <- readResult{line: line, err: err}
		}()

		var res readResult
		select {
		case <-ctx.Done():
			logger.Info(ctx, "console", "session.stop", slog.String("reason", "context"))
			return ctx.Err()
		case res = <-lines:
		}
		if res.err != nil {
			if errors.Is(res.err, io.EOF) || errors.Is(res.err, readline.ErrInterrupt) {
				logger.Info(ctx, "console", "session.stop", slog.String("reason", "eof"))
				return nil
			}
			return fmt.Errorf("console: read: %w", res.err)
		}

		text := strings.TrimSpace(res.line)
		if text == "" {
			continue
		}
		reqCtx := logger.WithRID(ctx, logger.NewRID())
		replies, _ := c.proc.Process(reqCtx, transport.Update{UserID: c.userID, Text: text})
		c.print(replies)
	}
}

type readResult struct {
	line string
	err  error
}

func (c *Console) print(replies []transport.Reply) {
	for _, r := range replies {
		if r.Keyboard.Empty() {
			fmt.Fprintln(c.out, r.Text)
			continue
		}
		fmt.Fprintln(c.out, FormatMenu(r))
	}
}

// FormatMenu frames a menu reply with its buttons, one "payload: text" per button and
// one row per keyboard line.
func FormatMenu(r transport.Reply) string {
	var b strings.Builder
	b.WriteString(separator + "\n")
	b.WriteString(r.Text + "\n")
	b.WriteString(separator + "\n")
	for _, line := range r.Keyboard.Lines {
		parts := make([]string, len(line))
		for i, btn := range line {
			parts[i] = btn.Payload + ": " + btn.Text
		}
		b.WriteString(strings.Join(parts, " | ") + "\n")
	}
	b.WriteString(separator)
	return b.String()
}
