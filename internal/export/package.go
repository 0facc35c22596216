package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/manash/imgedit/internal/imgx"
	"github.com/manash/imgedit/internal/security"
	"github.com/manash/imgedit/pkg/models"
)

const downloadTimeout = 60 * time.Second

// Packager bundles edited images into one compressed archive,
// downloading remote results as needed. Per-item failures are logged and
// skipped; only a failure to produce the archive itself is an error.
type Packager struct {
	scratchDir string
	httpClient *http.Client
	strictURLs bool
	logger     zerolog.Logger
	now        func() time.Time
}

func NewPackager(logger zerolog.Logger) *Packager {
	return &Packager{
		scratchDir: os.TempDir(),
		httpClient: &http.Client{Timeout: downloadTimeout},
		strictURLs: false,
		logger:     logger,
		now:        time.Now,
	}
}

// Package writes edited_images_<timestamp>.zip containing one PNG per
// resolvable result. names holds the original identifiers in batch
// order.
func (p *Packager) Package(ctx context.Context, refs map[int]models.ResultRef, names []string) (string, error) {
	zipPath := filepath.Join(p.scratchDir, fmt.Sprintf("edited_images_%s.zip", Timestamp(p.now())))

	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	for _, i := range sortedKeys(refs) {
		entryName := entryName(i, names)

		data, err := p.resolve(ctx, refs[i])
		if err != nil {
			p.logger.Warn().Int("index", i).Str("entry", entryName).Err(err).Msg("skipping archive entry")
			continue
		}

		w, err := zw.Create(entryName)
		if err != nil {
			p.logger.Warn().Str("entry", entryName).Err(err).Msg("skipping archive entry")
			continue
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			return "", fmt.Errorf("failed to write archive entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}

	return zipPath, nil
}

// resolve fetches or reads the edited image and re-encodes it
// losslessly.
func (p *Packager) resolve(ctx context.Context, ref models.ResultRef) ([]byte, error) {
	var raw []byte

	switch ref.Kind {
	case models.RefRemote:
		if err := security.ValidateImageURL(ref.URL, p.strictURLs); err != nil {
			return nil, err
		}
		data, err := p.download(ctx, ref.URL)
		if err != nil {
			return nil, err
		}
		raw = data
	case models.RefLocal:
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			return nil, err
		}
		raw = data
	default:
		return nil, fmt.Errorf("unknown result reference")
	}

	img, err := imgx.DecodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode edited image: %w", err)
	}
	return imgx.EncodePNG(img)
}

func (p *Packager) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// entryName derives edited_<original-name> with the extension forced to
// .png, falling back to a synthetic name past the end of the batch.
func entryName(index int, names []string) string {
	orig := fmt.Sprintf("image_%d", index+1)
	if index >= 0 && index < len(names) {
		orig = filepath.Base(names[index])
	}

	name := "edited_" + security.SanitizeFilename(orig)
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}
	return name
}

func sortedKeys(refs map[int]models.ResultRef) []int {
	keys := make([]int, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
