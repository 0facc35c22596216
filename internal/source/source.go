package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manash/imgedit/internal/imgx"
	"github.com/manash/imgedit/internal/workflow"
)

var ErrNotFound = errors.New("path does not exist or is not a directory")

var validExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Upload is a file received as raw bytes rather than read from disk.
type Upload struct {
	Name string
	Data []byte
}

// Warning records a file that could not be loaded. Warnings never abort
// the rest of a load.
type Warning struct {
	Name string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("Could not load %s: %v", w.Name, w.Err)
}

// LoadUploaded appends uploaded blobs to the current batch. Files that
// fail to decode are skipped with a warning; identifiers already present
// in the batch are silently ignored (first occurrence wins).
func LoadUploaded(sess *workflow.Session, files []Upload) []Warning {
	var warnings []Warning

	for _, f := range files {
		img, err := imgx.DecodeBytes(f.Data)
		if err != nil {
			warnings = append(warnings, Warning{Name: f.Name, Err: err})
			continue
		}
		sess.AddImage(workflow.ImageRecord{
			Name:   f.Name,
			Img:    imgx.FlattenRGB(img),
			Source: workflow.SourceUploaded,
		})
	}

	return warnings
}

// LoadDirectory replaces the whole batch with the supported images found
// directly under path. Files are visited in lexical order. Per-file
// decode failures become warnings; only a bad path is an error.
func LoadDirectory(sess *workflow.Session, path string) (int, []Warning, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return 0, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read directory: %w", err)
	}

	// The scan replaces everything: images, prompts, results, progress.
	sess.Reset()

	var warnings []Warning
	loaded := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !validExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			warnings = append(warnings, Warning{Name: name, Err: err})
			continue
		}
		img, err := imgx.DecodeBytes(data)
		if err != nil {
			warnings = append(warnings, Warning{Name: name, Err: err})
			continue
		}

		sess.AddImage(workflow.ImageRecord{
			Name:   name,
			Img:    imgx.FlattenRGB(img),
			Source: workflow.SourceDirectory,
		})
		loaded++
	}

	return loaded, warnings, nil
}
