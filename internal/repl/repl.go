// Package repl implements the interactive shell: load a directory of
// images, attach prompts, run edits, and export or package the results
// without leaving the session.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/manash/imgedit/internal/display"
	"github.com/manash/imgedit/internal/export"
	"github.com/manash/imgedit/internal/workflow"
)

type REPL struct {
	in        io.Reader
	out       io.Writer
	err       io.Writer
	sess      *workflow.Session
	ctrl      *workflow.Controller
	displayer *display.Displayer
	exporter  *export.Exporter
	packager  *export.Packager
	opts      workflow.Options
	commands  map[string]Command
	running   bool
}

type Config struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	Session    *workflow.Session
	Controller *workflow.Controller
	Displayer  *display.Displayer
	Exporter   *export.Exporter
	Packager   *export.Packager
	Options    workflow.Options
}

func New(cfg *Config) *REPL {
	r := &REPL{
		in:        cfg.In,
		out:       cfg.Out,
		err:       cfg.Err,
		sess:      cfg.Session,
		ctrl:      cfg.Controller,
		displayer: cfg.Displayer,
		exporter:  cfg.Exporter,
		packager:  cfg.Packager,
		opts:      cfg.Options,
		commands:  make(map[string]Command),
	}
	r.registerCommands()
	return r
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for r.running {
		r.printPrompt()
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.err, "Error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, args)
}

func (r *REPL) Stop() {
	r.running = false
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "imgedit interactive mode")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	if n := r.sess.Len(); n > 0 {
		fmt.Fprintf(r.out, "imgedit [%d image(s), %s]> ", n, r.opts.Size)
	} else {
		fmt.Fprintf(r.out, "imgedit [%s]> ", r.opts.Size)
	}
}

// parseCommand splits a line on spaces, honoring single and double
// quotes so multi-word prompts survive as one argument.
func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
