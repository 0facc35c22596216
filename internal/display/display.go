// Package display renders edited images inline in terminals that
// implement the kitty graphics protocol.
package display

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manash/imgedit/internal/security"
	"github.com/manash/imgedit/pkg/models"
)

const downloadTimeout = 60 * time.Second

type Displayer struct {
	out        io.Writer
	httpClient *http.Client
}

func New(out io.Writer) *Displayer {
	return &Displayer{
		out: out,
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
	}
}

// Display resolves an edit result and writes it to the terminal.
func (d *Displayer) Display(ctx context.Context, ref models.ResultRef) error {
	data, err := d.resolve(ctx, ref)
	if err != nil {
		return err
	}

	if err := NewKittyEncoder(d.out).Encode(data); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	fmt.Fprintln(d.out)
	return nil
}

func (d *Displayer) resolve(ctx context.Context, ref models.ResultRef) ([]byte, error) {
	switch ref.Kind {
	case models.RefLocal:
		return os.ReadFile(ref.Path)
	case models.RefRemote:
		if err := security.ValidateImageURL(ref.URL, false); err != nil {
			return nil, err
		}
		return d.download(ctx, ref.URL)
	default:
		return nil, fmt.Errorf("result has no data or URL")
	}
}

func (d *Displayer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// IsTerminalSupported reports whether the current terminal is known to
// handle the kitty graphics protocol.
func IsTerminalSupported() bool {
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	for _, prog := range []string{"kitty", "ghostty", "iterm.app", "wezterm"} {
		if termProgram == prog {
			return true
		}
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}

	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}
