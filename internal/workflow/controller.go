package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/manash/imgedit/internal/imgx"
	"github.com/manash/imgedit/internal/provider"
	"github.com/manash/imgedit/pkg/models"
)

// ErrSkippedEmptyPrompt signals that an image was left untouched because
// it had no instruction. It is a no-op marker, not a failure.
var ErrSkippedEmptyPrompt = errors.New("image skipped: empty prompt")

var ErrIndexOutOfRange = errors.New("image index out of range")

// DefaultDelay is the fixed pause between edit calls in a whole-batch
// run, a static pacing guard against the external service's rate limits.
const DefaultDelay = 500 * time.Millisecond

type Outcome string

const (
	OutcomeEdited  Outcome = "edited"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Attempt summarizes what happened to one image during a run.
type Attempt struct {
	Index   int
	Name    string
	Prompt  string
	Outcome Outcome
	Detail  string
}

type Options struct {
	Size  models.Size
	Delay time.Duration
}

// Controller drives the per-image workflow: an image with a non-empty
// prompt is submitted to the provider and ends up edited or failed; a
// failure never aborts the remaining batch.
type Controller struct {
	provider provider.Provider
	out      io.Writer
	err      io.Writer
	logger   zerolog.Logger
}

func NewController(prov provider.Provider, out, errOut io.Writer, logger zerolog.Logger) *Controller {
	return &Controller{
		provider: prov,
		out:      out,
		err:      errOut,
		logger:   logger,
	}
}

// RunAll processes every image in the batch sequentially. Images with
// empty prompts are skipped with a warning and produce no record.
// Progress is updated as (i+1)/total for each image, and the pacing delay
// runs after each attempted edit.
func (c *Controller) RunAll(ctx context.Context, sess *Session, opts Options) ([]Attempt, error) {
	sess.ResetOutcomes()

	total := sess.Len()
	attempts := make([]Attempt, 0, total)

	for i := range sess.Images {
		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		default:
		}

		sess.Progress.Current = i
		sess.Progress.Fraction = float64(i+1) / float64(total)

		if sess.Prompts.IsEmpty(i) {
			fmt.Fprintf(c.err, "Skipping image %d because it has an empty prompt.\n", i+1)
			c.logger.Warn().Int("index", i).Str("image", sess.Name(i)).Msg("skipped: empty prompt")
			attempts = append(attempts, Attempt{
				Index:   i,
				Name:    sess.Name(i),
				Outcome: OutcomeSkipped,
			})
			continue
		}

		attempt := c.editOne(ctx, sess, i, opts, func(rec Record) {
			sess.Records = append(sess.Records, rec)
		})
		attempts = append(attempts, attempt)

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return attempts, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	sess.Progress.Complete = true
	return attempts, nil
}

// RunOne processes a single image outside a batch run: no progress
// reporting and no pacing delay. An empty prompt returns
// ErrSkippedEmptyPrompt and performs no transition.
func (c *Controller) RunOne(ctx context.Context, sess *Session, index int, opts Options) (Attempt, error) {
	if index < 0 || index >= sess.Len() {
		return Attempt{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	if sess.Prompts.IsEmpty(index) {
		return Attempt{Index: index, Name: sess.Name(index), Outcome: OutcomeSkipped}, ErrSkippedEmptyPrompt
	}

	attempt := c.editOne(ctx, sess, index, opts, func(rec Record) {
		sess.SetRecordAt(index, rec)
	})
	if attempt.Outcome == OutcomeFailed {
		return attempt, fmt.Errorf("editing image %d: %s", index+1, attempt.Detail)
	}
	return attempt, nil
}

// editOne performs the Prompted -> Submitted -> {Edited|Failed}
// transitions for one image. The record is written through the sink in
// both terminal states, never left partially filled.
func (c *Controller) editOne(ctx context.Context, sess *Session, i int, opts Options, record func(Record)) Attempt {
	name := sess.Name(i)
	promptText := sess.Prompts.Get(i)

	fmt.Fprintf(c.out, "[%d/%d] Editing %s: %q...\n", i+1, sess.Len(), name, truncate(promptText, 50))

	attempt := Attempt{Index: i, Name: name, Prompt: promptText}

	encoded, err := imgx.EncodePNG(sess.Images[i].Img)
	if err != nil {
		return c.fail(attempt, fmt.Errorf("failed to encode image: %w", err), record)
	}

	req := models.NewEditRequest(encoded, promptText)
	if opts.Size != "" {
		req.Size = opts.Size
	}

	ref, err := c.provider.Edit(ctx, req)
	if err != nil {
		return c.fail(attempt, err, record)
	}

	summary := fmt.Sprintf("Image edited with prompt: %s", promptText)
	sess.Results[attempt.Index] = Result{Ref: ref, Summary: summary}
	record(Record{ImagePath: name, Response: summary})

	attempt.Outcome = OutcomeEdited
	attempt.Detail = ref.String()
	c.logger.Info().Str("image", name).Str("result", ref.String()).Msg("image edited")
	fmt.Fprintf(c.out, "       Edited: %s\n", ref)
	return attempt
}

func (c *Controller) fail(attempt Attempt, err error, record func(Record)) Attempt {
	record(Record{
		ImagePath: attempt.Name,
		Response:  fmt.Sprintf("Error: %v", err),
	})
	attempt.Outcome = OutcomeFailed
	attempt.Detail = err.Error()
	c.logger.Error().Str("image", attempt.Name).Err(err).Msg("image edit failed")
	fmt.Fprintf(c.err, "       Error: %v\n", err)
	return attempt
}

// PrintSummary writes a per-run roll-up in batch order.
func (c *Controller) PrintSummary(attempts []Attempt) {
	var edited, failed, skipped int
	var failures []Attempt

	for _, a := range attempts {
		switch a.Outcome {
		case OutcomeEdited:
			edited++
		case OutcomeFailed:
			failed++
			failures = append(failures, a)
		case OutcomeSkipped:
			skipped++
		}
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Summary:")
	fmt.Fprintf(c.out, "  Edited: %d/%d images\n", edited, len(attempts))
	if skipped > 0 {
		fmt.Fprintf(c.out, "  Skipped (empty prompt): %d\n", skipped)
	}
	if failed > 0 {
		fmt.Fprintf(c.out, "  Failed: %d (see errors below)\n", failed)
	}

	if len(failures) > 0 {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Errors:")
		for _, a := range failures {
			fmt.Fprintf(c.out, "  [%d] %s: %s\n", a.Index+1, a.Name, a.Detail)
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func syntheticName(index int) string {
	return fmt.Sprintf("Image %d", index+1)
}
