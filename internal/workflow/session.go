package workflow

import (
	"image"

	"github.com/manash/imgedit/internal/prompt"
	"github.com/manash/imgedit/pkg/models"
)

type SourceKind int

const (
	SourceUploaded SourceKind = iota
	SourceDirectory
)

// ImageRecord is one loaded image. Identifiers are unique within a batch
// and insertion order is significant.
type ImageRecord struct {
	Name   string
	Img    image.Image
	Source SourceKind
}

// Result is the stored outcome of a completed edit call for one image.
type Result struct {
	Ref     models.ResultRef
	Summary string
}

// Record is the export-facing view of one attempt. Field names are part
// of the JSON export contract.
type Record struct {
	ImagePath string `json:"image_path"`
	Response  string `json:"response"`
}

type Progress struct {
	Current  int
	Fraction float64
	Complete bool
}

// Session holds the current batch: images, their prompts, edit results
// and run progress. It is owned by exactly one workflow run at a time;
// callers must not trigger concurrent runs against the same session.
type Session struct {
	Images   []ImageRecord
	Prompts  *prompt.Store
	Results  map[int]Result
	Records  []Record
	Progress Progress
}

func NewSession() *Session {
	return &Session{
		Prompts: prompt.NewStore(),
		Results: make(map[int]Result),
	}
}

// Reset discards the whole batch: images, prompts, results and progress.
func (s *Session) Reset() {
	s.Images = nil
	s.Prompts.Reset()
	s.Results = make(map[int]Result)
	s.Records = nil
	s.Progress = Progress{}
}

// ResetOutcomes clears results and progress but keeps images and prompts,
// as happens at the start of each whole-batch run.
func (s *Session) ResetOutcomes() {
	s.Results = make(map[int]Result)
	s.Records = nil
	s.Progress = Progress{}
}

func (s *Session) Len() int {
	return len(s.Images)
}

func (s *Session) HasImage(name string) bool {
	for _, img := range s.Images {
		if img.Name == name {
			return true
		}
	}
	return false
}

// AddImage appends a record unless its identifier is already present;
// duplicates are silently ignored (first occurrence wins).
func (s *Session) AddImage(rec ImageRecord) bool {
	if s.HasImage(rec.Name) {
		return false
	}
	s.Images = append(s.Images, rec)
	return true
}

// Name returns the identifier for index, or a synthetic label when the
// index is out of range.
func (s *Session) Name(index int) string {
	if index >= 0 && index < len(s.Images) {
		return s.Images[index].Name
	}
	return syntheticName(index)
}

// SetRecordAt places a record at an exact index, padding with blank
// records if the list is shorter. Used by single-image runs so a later
// whole-batch export stays index-aligned.
func (s *Session) SetRecordAt(index int, rec Record) {
	for len(s.Records) <= index {
		s.Records = append(s.Records, Record{})
	}
	s.Records[index] = rec
}

// EditedRefs returns the result references keyed by image index.
func (s *Session) EditedRefs() map[int]models.ResultRef {
	refs := make(map[int]models.ResultRef, len(s.Results))
	for i, res := range s.Results {
		refs[i] = res.Ref
	}
	return refs
}

// ImageNames returns the identifiers in batch order.
func (s *Session) ImageNames() []string {
	names := make([]string, len(s.Images))
	for i, img := range s.Images {
		names[i] = img.Name
	}
	return names
}
