package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/manash/imgedit/internal/history"
	"github.com/manash/imgedit/internal/keys"
	"github.com/manash/imgedit/internal/logging"
	"github.com/manash/imgedit/internal/provider"
	"github.com/manash/imgedit/internal/provider/openai"
	"github.com/manash/imgedit/internal/workflow"
	"github.com/manash/imgedit/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagAPIKey  string
	flagSize    string
	flagDelay   time.Duration
	flagVerbose bool
)

// App carries the injectable seams so commands can be tested without
// real providers or a real history database.
type App struct {
	Out         io.Writer
	Err         io.Writer
	GetEnv      func(string) string
	NewProvider func(cfg *provider.Config) (provider.Provider, error)
	NewLogger   func(verbose bool) zerolog.Logger
	OpenHistory func() (*history.Store, error)
}

func DefaultApp() *App {
	return &App{
		Out:    os.Stdout,
		Err:    os.Stderr,
		GetEnv: os.Getenv,
		NewProvider: func(cfg *provider.Config) (provider.Provider, error) {
			return openai.New(cfg)
		},
		NewLogger: func(verbose bool) zerolog.Logger {
			return logging.New("", verbose)
		},
		OpenHistory: history.NewStore,
	}
}

func main() {
	root := newRootCmd(DefaultApp())

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(fmt.Sprintf("%s (commit: %s)", version, commit)),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgedit",
		Short: "Batch-edit images with AI image editing APIs",
		Long: `imgedit applies natural-language editing instructions to batches of
images using the OpenAI image editing API.

Examples:
  imgedit run ./photos --prompt "Clear the room of all furniture"
  imgedit run ./photos --prompts prompts.txt --export json --package
  imgedit edit room.jpg -p "remove the couch"
  imgedit repl ./photos`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present; missing file is fine.
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (defaults to stored key, then OPENAI_API_KEY)")
	cmd.PersistentFlags().StringVarP(&flagSize, "size", "s", string(models.SizeAuto), "output resolution (1024x1024, 1536x1024, 1024x1536, auto)")
	cmd.PersistentFlags().DurationVar(&flagDelay, "delay", workflow.DefaultDelay, "pause between consecutive edit calls")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log request and response details")

	cmd.AddCommand(
		newRunCmd(app),
		newEditCmd(app),
		newReplCmd(app),
		newKeysCmd(app),
		newHistoryCmd(app),
	)

	return cmd
}

// buildProvider resolves the API key and constructs the edit provider.
func (app *App) buildProvider() (provider.Provider, error) {
	apiKey, source, err := keys.GetAPIKey(flagAPIKey, "openai", "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		fmt.Fprintf(app.Err, "Using API key from %s\n", source)
	}

	return app.NewProvider(&provider.Config{
		APIKey:  apiKey,
		Verbose: flagVerbose,
	})
}

func parseSizeFlag() (models.Size, error) {
	size := models.Size(flagSize)
	if !size.IsValid() {
		return "", fmt.Errorf("%w: %q not in %v", models.ErrInvalidSize, flagSize, models.ValidSizes())
	}
	return size, nil
}

func runOptions() (workflow.Options, error) {
	size, err := parseSizeFlag()
	if err != nil {
		return workflow.Options{}, err
	}
	return workflow.Options{Size: size, Delay: flagDelay}, nil
}
