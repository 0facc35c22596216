package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manash/imgedit/internal/workflow"
)

// PromptEntry pairs an image identifier with its editing instruction, as
// read from a prompts file in one-shot runs.
type PromptEntry struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

func ParsePromptFile(path string) ([]PromptEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return ParsePromptJSON(file)
	case ".txt", "":
		return ParsePromptText(file)
	default:
		return nil, fmt.Errorf("unsupported file format %q: use .txt or .json", ext)
	}
}

// ParsePromptText reads lines of the form "image-name: instruction".
// Blank lines and #-comments are ignored.
func ParsePromptText(r io.Reader) ([]PromptEntry, error) {
	var entries []PromptEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, promptText, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"<image>: <prompt>\"", lineNo)
		}
		name = strings.TrimSpace(name)
		promptText = strings.TrimSpace(promptText)
		if name == "" || promptText == "" {
			return nil, fmt.Errorf("line %d: empty image name or prompt", lineNo)
		}

		entries = append(entries, PromptEntry{Image: name, Prompt: promptText})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no prompts found in file")
	}

	return entries, nil
}

func ParsePromptJSON(r io.Reader) ([]PromptEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entries []PromptEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no prompts found in file")
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Image) == "" {
			return nil, fmt.Errorf("item %d has no image name", i+1)
		}
		if strings.TrimSpace(e.Prompt) == "" {
			return nil, fmt.Errorf("item %d has empty prompt", i+1)
		}
	}

	return entries, nil
}

// ApplyPrompts sets instructions on the batch by image name. Entries
// naming images not present in the batch become warnings.
func ApplyPrompts(sess *workflow.Session, entries []PromptEntry) (int, []Warning) {
	index := make(map[string]int, sess.Len())
	for i, img := range sess.Images {
		index[img.Name] = i
	}

	applied := 0
	var warnings []Warning

	for _, e := range entries {
		i, ok := index[e.Image]
		if !ok {
			warnings = append(warnings, Warning{Name: e.Image, Err: fmt.Errorf("not in loaded batch")})
			continue
		}
		sess.Prompts.Set(i, e.Prompt)
		applied++
	}

	return applied, warnings
}
