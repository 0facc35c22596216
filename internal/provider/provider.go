package provider

import (
	"context"
	"errors"

	"github.com/manash/imgedit/pkg/models"
)

var (
	ErrAPIKeyRequired = errors.New("API key is required")
	ErrEditFailed     = errors.New("image edit failed")
)

// Provider performs the external edit operation and retrieves hosted
// results. Implementations wrap all transport and API failures as
// ErrEditFailed carrying the upstream message; callers never inspect
// nested error types.
type Provider interface {
	Name() string
	Edit(ctx context.Context, req *models.EditRequest) (models.ResultRef, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	TimeoutSec int
	Verbose    bool
}
