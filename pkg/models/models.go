package models

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrNoImageData   = errors.New("image data is required for editing")
	ErrInvalidSize   = errors.New("invalid output size")
	ErrEmptyResponse = errors.New("no image URL or data received in the response")
)

// Size is the requested output resolution. "auto" lets the API pick.
type Size string

const (
	SizeSquare    Size = "1024x1024"
	SizeLandscape Size = "1536x1024"
	SizePortrait  Size = "1024x1536"
	SizeAuto      Size = "auto"
)

func ValidSizes() []Size {
	return []Size{SizeSquare, SizeLandscape, SizePortrait, SizeAuto}
}

func (s Size) IsValid() bool {
	return slices.Contains(ValidSizes(), s)
}

func (s Size) String() string {
	return string(s)
}

// EditRequest carries one image and its editing instruction to a provider.
type EditRequest struct {
	Image  []byte
	Prompt string
	Size   Size
}

func NewEditRequest(image []byte, prompt string) *EditRequest {
	return &EditRequest{
		Image:  image,
		Prompt: prompt,
		Size:   SizeAuto,
	}
}

func (r *EditRequest) Validate() error {
	if len(r.Image) == 0 {
		return ErrNoImageData
	}
	if r.Prompt == "" {
		return ErrEmptyPrompt
	}
	if r.Size != "" && !r.Size.IsValid() {
		return fmt.Errorf("%w: %q not in %v", ErrInvalidSize, r.Size, ValidSizes())
	}
	return nil
}

// RefKind distinguishes where an edited image lives.
type RefKind int

const (
	RefRemote RefKind = iota
	RefLocal
)

// ResultRef is the outcome of an edit call: either a URL hosted by the
// API or a file persisted locally from inline response bytes.
type ResultRef struct {
	Kind RefKind
	URL  string
	Path string
}

func RemoteRef(url string) ResultRef {
	return ResultRef{Kind: RefRemote, URL: url}
}

func LocalRef(path string) ResultRef {
	return ResultRef{Kind: RefLocal, Path: path}
}

func (r ResultRef) String() string {
	if r.Kind == RefRemote {
		return r.URL
	}
	return r.Path
}

// ResponseKind tags the shape of the external API's answer.
type ResponseKind int

const (
	ResponseEmpty ResponseKind = iota
	ResponseInlineBytes
	ResponseRemoteURL
)

// EditResponse is the decoded external response. Exactly one of Data or
// URL is meaningful, according to Kind.
type EditResponse struct {
	Kind ResponseKind
	Data []byte
	URL  string
}
