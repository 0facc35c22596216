package repl

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/manash/imgedit/internal/export"
	"github.com/manash/imgedit/internal/prompt"
	"github.com/manash/imgedit/internal/source"
	"github.com/manash/imgedit/pkg/models"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, args []string) error
}

func (r *REPL) registerCommands() {
	commands := []Command{
		&LoadCommand{},
		&ListCommand{},
		&PromptCommand{},
		&PresetsCommand{},
		&PresetCommand{},
		&EditCommand{},
		&RunCommand{},
		&ShowCommand{},
		&ExportCommand{},
		&PackageCommand{},
		&SizeCommand{},
		&StatusCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}

	for _, cmd := range commands {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// imageIndex converts a 1-based user argument to a batch index.
func imageIndex(r *REPL, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("not an image number: %s", arg)
	}
	if n < 1 || n > r.sess.Len() {
		return 0, fmt.Errorf("image %d out of range (have %d)", n, r.sess.Len())
	}
	return n - 1, nil
}

// LoadCommand replaces the batch with a directory's images.
type LoadCommand struct{}

func (c *LoadCommand) Name() string        { return "load" }
func (c *LoadCommand) Aliases() []string   { return []string{"l"} }
func (c *LoadCommand) Description() string { return "Load all images from a directory" }
func (c *LoadCommand) Usage() string       { return "load <directory>" }

func (c *LoadCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	loaded, warnings, err := source.LoadDirectory(r.sess, args[0])
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(r.err, w)
	}
	fmt.Fprintf(r.out, "Loaded %d image(s) from %s\n", loaded, args[0])
	return nil
}

// ListCommand prints the batch with prompt and outcome per image.
type ListCommand struct{}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Aliases() []string   { return []string{"ls"} }
func (c *ListCommand) Description() string { return "List loaded images and their prompts" }
func (c *ListCommand) Usage() string       { return "list" }

func (c *ListCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.sess.Len() == 0 {
		fmt.Fprintln(r.out, "No images loaded. Use 'load <directory>' first.")
		return nil
	}

	for i, img := range r.sess.Images {
		status := " "
		if _, ok := r.sess.Results[i]; ok {
			status = "*"
		}
		promptText := r.sess.Prompts.Get(i)
		if promptText == "" {
			promptText = "(no prompt)"
		}
		fmt.Fprintf(r.out, "%s %2d. %-30s %s\n", status, i+1, img.Name, promptText)
	}
	return nil
}

// PromptCommand shows or sets an image's prompt.
type PromptCommand struct{}

func (c *PromptCommand) Name() string        { return "prompt" }
func (c *PromptCommand) Aliases() []string   { return []string{"p"} }
func (c *PromptCommand) Description() string { return "Show or set the prompt for an image" }
func (c *PromptCommand) Usage() string       { return "prompt <image> [text]" }

func (c *PromptCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	i, err := imageIndex(r, args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		text := r.sess.Prompts.Get(i)
		if text == "" {
			fmt.Fprintf(r.out, "Image %d has no prompt.\n", i+1)
		} else {
			fmt.Fprintf(r.out, "Image %d: %s\n", i+1, text)
		}
		return nil
	}

	r.sess.Prompts.Set(i, strings.Join(args[1:], " "))
	fmt.Fprintf(r.out, "Prompt set for image %d.\n", i+1)
	return nil
}

// PresetsCommand lists the canned instruction phrases.
type PresetsCommand struct{}

func (c *PresetsCommand) Name() string        { return "presets" }
func (c *PresetsCommand) Aliases() []string   { return nil }
func (c *PresetsCommand) Description() string { return "List preset instruction phrases" }
func (c *PresetsCommand) Usage() string       { return "presets" }

func (c *PresetsCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	for i, phrase := range prompt.Presets {
		fmt.Fprintf(r.out, "%2d. %s\n", i+1, phrase)
	}
	return nil
}

// PresetCommand appends a preset phrase to an image's prompt.
type PresetCommand struct{}

func (c *PresetCommand) Name() string        { return "preset" }
func (c *PresetCommand) Aliases() []string   { return nil }
func (c *PresetCommand) Description() string { return "Append a preset phrase to an image's prompt" }
func (c *PresetCommand) Usage() string       { return "preset <image> <preset>" }

func (c *PresetCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	i, err := imageIndex(r, args[0])
	if err != nil {
		return err
	}

	k, err := strconv.Atoi(args[1])
	if err != nil || k < 1 || k > len(prompt.Presets) {
		return fmt.Errorf("preset number must be 1-%d", len(prompt.Presets))
	}

	r.sess.Prompts.AppendPreset(i, prompt.Presets[k-1])
	fmt.Fprintf(r.out, "Image %d: %s\n", i+1, r.sess.Prompts.Get(i))
	return nil
}

// EditCommand edits a single image.
type EditCommand struct{}

func (c *EditCommand) Name() string        { return "edit" }
func (c *EditCommand) Aliases() []string   { return []string{"e"} }
func (c *EditCommand) Description() string { return "Edit one image with its prompt" }
func (c *EditCommand) Usage() string       { return "edit <image>" }

func (c *EditCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	i, err := imageIndex(r, args[0])
	if err != nil {
		return err
	}

	if _, err := r.ctrl.RunOne(ctx, r.sess, i, r.opts); err != nil {
		return err
	}
	return nil
}

// RunCommand edits the whole batch.
type RunCommand struct{}

func (c *RunCommand) Name() string        { return "run" }
func (c *RunCommand) Aliases() []string   { return []string{"r"} }
func (c *RunCommand) Description() string { return "Edit every image that has a prompt" }
func (c *RunCommand) Usage() string       { return "run" }

func (c *RunCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.sess.Len() == 0 {
		return fmt.Errorf("no images loaded")
	}

	attempts, err := r.ctrl.RunAll(ctx, r.sess, r.opts)
	if err != nil {
		return err
	}
	r.ctrl.PrintSummary(attempts)
	return nil
}

// ShowCommand renders an edited image inline if the terminal allows it.
type ShowCommand struct{}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Aliases() []string   { return []string{"s"} }
func (c *ShowCommand) Description() string { return "Display an edited image in the terminal" }
func (c *ShowCommand) Usage() string       { return "show <image>" }

func (c *ShowCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	i, err := imageIndex(r, args[0])
	if err != nil {
		return err
	}

	res, ok := r.sess.Results[i]
	if !ok {
		return fmt.Errorf("image %d has not been edited yet", i+1)
	}

	return r.displayer.Display(ctx, res.Ref)
}

// ExportCommand writes the accumulated records to a file.
type ExportCommand struct{}

func (c *ExportCommand) Name() string        { return "export" }
func (c *ExportCommand) Aliases() []string   { return nil }
func (c *ExportCommand) Description() string { return "Export results as JSON or text" }
func (c *ExportCommand) Usage() string       { return "export <json|text>" }

func (c *ExportCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	format, err := export.ParseFormat(args[0])
	if err != nil {
		return err
	}
	if len(r.sess.Records) == 0 {
		return fmt.Errorf("nothing to export yet")
	}

	path, err := r.exporter.Export(r.sess.Records, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Exported: %s\n", path)
	return nil
}

// PackageCommand bundles the edited images into a zip archive.
type PackageCommand struct{}

func (c *PackageCommand) Name() string        { return "package" }
func (c *PackageCommand) Aliases() []string   { return []string{"zip"} }
func (c *PackageCommand) Description() string { return "Bundle edited images into a zip archive" }
func (c *PackageCommand) Usage() string       { return "package" }

func (c *PackageCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	refs := r.sess.EditedRefs()
	if len(refs) == 0 {
		return fmt.Errorf("no edited images to package")
	}

	path, err := r.packager.Package(ctx, refs, r.sess.ImageNames())
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Packaged: %s\n", path)
	return nil
}

// SizeCommand shows or sets the output resolution.
type SizeCommand struct{}

func (c *SizeCommand) Name() string        { return "size" }
func (c *SizeCommand) Aliases() []string   { return nil }
func (c *SizeCommand) Description() string { return "Show or set the output resolution" }
func (c *SizeCommand) Usage() string       { return "size [1024x1024|1536x1024|1024x1536|auto]" }

func (c *SizeCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Output resolution: %s\n", r.opts.Size)
		return nil
	}

	size := models.Size(args[0])
	if !size.IsValid() {
		return fmt.Errorf("%w: %q not in %v", models.ErrInvalidSize, args[0], models.ValidSizes())
	}
	r.opts.Size = size
	fmt.Fprintf(r.out, "Output resolution set to %s.\n", size)
	return nil
}

// StatusCommand summarizes the session.
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Aliases() []string   { return nil }
func (c *StatusCommand) Description() string { return "Show session status" }
func (c *StatusCommand) Usage() string       { return "status" }

func (c *StatusCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	prompted := 0
	for i := 0; i < r.sess.Len(); i++ {
		if !r.sess.Prompts.IsEmpty(i) {
			prompted++
		}
	}

	fmt.Fprintf(r.out, "Images:   %d\n", r.sess.Len())
	fmt.Fprintf(r.out, "Prompted: %d\n", prompted)
	fmt.Fprintf(r.out, "Edited:   %d\n", len(r.sess.Results))
	fmt.Fprintf(r.out, "Size:     %s\n", r.opts.Size)
	return nil
}

// HelpCommand lists the commands.
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"h", "?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	seen := make(map[string]Command)
	for _, cmd := range r.commands {
		seen[cmd.Name()] = cmd
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.out, "Commands:")
	for _, name := range names {
		cmd := seen[name]
		fmt.Fprintf(r.out, "  %-40s %s\n", cmd.Usage(), cmd.Description())
	}
	return nil
}

// QuitCommand ends the session.
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit interactive mode" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	r.Stop()
	return nil
}
