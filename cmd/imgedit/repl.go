package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manash/imgedit/internal/auth"
	"github.com/manash/imgedit/internal/display"
	"github.com/manash/imgedit/internal/export"
	"github.com/manash/imgedit/internal/repl"
	"github.com/manash/imgedit/internal/source"
	"github.com/manash/imgedit/internal/workflow"
)

var flagPassword string

func newReplCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [directory]",
		Short: "Start an interactive editing session",
		Long: `Start an interactive session for loading images, attaching prompts,
running edits and exporting results. When a session password is
configured (--password or IMGEDIT_PASSWORD) it is asked for before the
session starts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runRepl(cmd, dir, app)
		},
	}

	cmd.Flags().StringVar(&flagPassword, "password", "", "session password (defaults to IMGEDIT_PASSWORD)")

	return cmd
}

func runRepl(cmd *cobra.Command, dir string, app *App) error {
	opts, err := runOptions()
	if err != nil {
		return err
	}

	logger := app.NewLogger(flagVerbose)

	gate, enabled := auth.FromEnv(logger)
	if flagPassword != "" {
		gate, enabled = auth.NewGate(flagPassword, logger), true
	}
	if enabled {
		if err := gate.Prompt(os.Stdin, app.Err); err != nil {
			return err
		}
	}

	prov, err := app.buildProvider()
	if err != nil {
		return err
	}

	sess := workflow.NewSession()
	if dir != "" {
		loaded, warnings, err := source.LoadDirectory(sess, dir)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintln(app.Err, w)
		}
		fmt.Fprintf(app.Out, "Loaded %d image(s) from %s\n", loaded, dir)
	}

	r := repl.New(&repl.Config{
		In:         os.Stdin,
		Out:        app.Out,
		Err:        app.Err,
		Session:    sess,
		Controller: workflow.NewController(prov, app.Out, app.Err, logger),
		Displayer:  display.New(app.Out),
		Exporter:   export.NewExporter(),
		Packager:   export.NewPackager(logger),
		Options:    opts,
	})

	return r.Run(cmd.Context())
}
