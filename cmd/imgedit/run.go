package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/manash/imgedit/internal/display"
	"github.com/manash/imgedit/internal/export"
	"github.com/manash/imgedit/internal/source"
	"github.com/manash/imgedit/internal/workflow"
)

var (
	flagPromptFile string
	flagPrompt     string
	flagExport     string
	flagPackage    bool
	flagNoHistory  bool
	flagShow       bool
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <directory>",
		Short: "Edit every image in a directory",
		Long: `Load all supported images (.jpg, .jpeg, .png) from a directory,
attach a prompt to each, and submit them one at a time.

Prompts come either from --prompt (the same instruction for every image)
or from --prompts, a file mapping image names to instructions:

  room.jpg: Clear the room of all furniture
  kitchen.png: Repaint the walls white

JSON prompt files with [{"image": ..., "prompt": ...}] entries also work.
Images without a prompt are skipped, and one failed edit does not stop
the rest of the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), args[0], app)
		},
	}

	cmd.Flags().StringVar(&flagPromptFile, "prompts", "", "file mapping image names to prompts (.txt or .json)")
	cmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "one prompt applied to every image")
	cmd.Flags().StringVar(&flagExport, "export", "", "write results to a file (json or text)")
	cmd.Flags().BoolVar(&flagPackage, "package", false, "bundle edited images into a zip archive")
	cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "skip recording the run in the history database")

	return cmd
}

func runBatch(ctx context.Context, dir string, app *App) error {
	if flagPromptFile == "" && flagPrompt == "" {
		return fmt.Errorf("provide --prompt or --prompts")
	}

	opts, err := runOptions()
	if err != nil {
		return err
	}

	logger := app.NewLogger(flagVerbose)

	prov, err := app.buildProvider()
	if err != nil {
		return err
	}

	sess := workflow.NewSession()
	loaded, warnings, err := source.LoadDirectory(sess, dir)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(app.Err, w)
	}
	if loaded == 0 {
		return fmt.Errorf("no supported images found in %s", dir)
	}
	fmt.Fprintf(app.Out, "Loaded %d image(s) from %s\n", loaded, dir)

	if err := attachPrompts(sess, app); err != nil {
		return err
	}

	ctrl := workflow.NewController(prov, app.Out, app.Err, logger)

	runID := beginHistory(ctx, app, logger, opts, sess.Len())

	attempts, err := ctrl.RunAll(ctx, sess, opts)
	if err != nil {
		return err
	}
	ctrl.PrintSummary(attempts)

	finishHistory(ctx, app, logger, runID, attempts)

	if flagExport != "" {
		format, err := export.ParseFormat(flagExport)
		if err != nil {
			return err
		}
		path, err := export.NewExporter().Export(sess.Records, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "Exported: %s\n", path)
	}

	if flagPackage {
		refs := sess.EditedRefs()
		if len(refs) == 0 {
			fmt.Fprintln(app.Err, "Nothing to package: no images were edited.")
			return nil
		}
		path, err := export.NewPackager(logger).Package(ctx, refs, sess.ImageNames())
		if err != nil {
			return err
		}
		if info, err := os.Stat(path); err == nil {
			fmt.Fprintf(app.Out, "Packaged: %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
		} else {
			fmt.Fprintf(app.Out, "Packaged: %s\n", path)
		}
	}

	return nil
}

// attachPrompts fills the session's prompt store from --prompts or
// --prompt.
func attachPrompts(sess *workflow.Session, app *App) error {
	if flagPromptFile != "" {
		entries, err := source.ParsePromptFile(flagPromptFile)
		if err != nil {
			return err
		}
		applied, warnings := source.ApplyPrompts(sess, entries)
		for _, w := range warnings {
			fmt.Fprintln(app.Err, w)
		}
		if applied == 0 {
			return fmt.Errorf("no prompt in %s matched a loaded image", flagPromptFile)
		}
		return nil
	}

	for i := 0; i < sess.Len(); i++ {
		sess.Prompts.Set(i, flagPrompt)
	}
	return nil
}

func newEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <image-file>",
		Short: "Edit a single image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd.Context(), args[0], app)
		},
	}

	cmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "editing instruction (required)")
	cmd.Flags().BoolVar(&flagShow, "show", false, "display the edited image in the terminal")
	cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "skip recording the run in the history database")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

func runSingle(ctx context.Context, path string, app *App) error {
	opts, err := runOptions()
	if err != nil {
		return err
	}

	logger := app.NewLogger(flagVerbose)

	prov, err := app.buildProvider()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	sess := workflow.NewSession()
	uploads := []source.Upload{{Name: filepath.Base(path), Data: data}}
	for _, w := range source.LoadUploaded(sess, uploads) {
		return fmt.Errorf("%s", w)
	}
	sess.Prompts.Set(0, flagPrompt)

	ctrl := workflow.NewController(prov, app.Out, app.Err, logger)

	runID := beginHistory(ctx, app, logger, opts, 1)

	attempt, err := ctrl.RunOne(ctx, sess, 0, opts)
	finishHistory(ctx, app, logger, runID, []workflow.Attempt{attempt})
	if err != nil {
		return err
	}

	if flagShow {
		if !display.IsTerminalSupported() {
			fmt.Fprintln(app.Err, "Terminal does not support inline images; skipping display.")
		} else if res, ok := sess.Results[0]; ok {
			if err := display.New(app.Out).Display(ctx, res.Ref); err != nil {
				fmt.Fprintf(app.Err, "Warning: failed to display: %v\n", err)
			}
		}
	}

	return nil
}

// beginHistory opens the history store and records the run start.
// History is best effort: failures are logged, never fatal.
func beginHistory(ctx context.Context, app *App, logger zerolog.Logger, opts workflow.Options, imageCount int) string {
	if flagNoHistory {
		return ""
	}

	store, err := app.OpenHistory()
	if err != nil {
		logger.Warn().Err(err).Msg("history disabled")
		return ""
	}
	defer store.Close()

	runID, err := store.BeginRun(ctx, string(opts.Size), imageCount)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to record run start")
		return ""
	}
	return runID
}

func finishHistory(ctx context.Context, app *App, logger zerolog.Logger, runID string, attempts []workflow.Attempt) {
	if runID == "" {
		return
	}

	store, err := app.OpenHistory()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to reopen history")
		return
	}
	defer store.Close()

	if err := store.RecordAttempts(ctx, runID, attempts); err != nil {
		logger.Warn().Err(err).Msg("failed to record attempts")
	}
	if err := store.FinishRun(ctx, runID); err != nil {
		logger.Warn().Err(err).Msg("failed to record run end")
	}
}
