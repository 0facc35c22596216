package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manash/imgedit/internal/provider"
	"github.com/manash/imgedit/pkg/models"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second

	// The only OpenAI model that accepts natural-language edits on a
	// whole image without a mask.
	editModel   = "gpt-image-1"
	editQuality = "high"
)

type apiResponse struct {
	Created int64       `json:"created"`
	Data    []imageData `json:"data"`
	Error   *apiError   `json:"error,omitempty"`
}

type imageData struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// decode maps the wire response onto the tagged EditResponse variant.
// The raw base64 stays encoded here; Edit decodes it when persisting.
func (r apiResponse) decode() models.EditResponse {
	if len(r.Data) == 0 {
		return models.EditResponse{Kind: models.ResponseEmpty}
	}
	if r.Data[0].B64JSON != "" {
		return models.EditResponse{Kind: models.ResponseInlineBytes, Data: []byte(r.Data[0].B64JSON)}
	}
	if r.Data[0].URL != "" {
		return models.EditResponse{Kind: models.ResponseRemoteURL, URL: r.Data[0].URL}
	}
	return models.EditResponse{Kind: models.ResponseEmpty}
}

type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	scratchDir string
	verbose    bool
}

func New(cfg *provider.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrAPIKeyRequired
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		scratchDir: os.TempDir(),
		verbose:    cfg.Verbose,
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (p *Provider) logMultipartRequest(method, url string, headers http.Header, req *models.EditRequest) {
	if !p.verbose {
		return
	}

	fmt.Fprintln(os.Stderr, "--- REQUEST ---")
	fmt.Fprintf(os.Stderr, "%s %s\n", method, url)
	fmt.Fprintln(os.Stderr, "Headers:")
	for key, values := range headers {
		for _, value := range values {
			if strings.ToLower(key) == "authorization" {
				value = "[REDACTED]"
			}
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, value)
		}
	}
	fmt.Fprintln(os.Stderr, "Body (multipart form):")
	fmt.Fprintf(os.Stderr, "  model: %s\n", editModel)
	fmt.Fprintf(os.Stderr, "  prompt: %s\n", req.Prompt)
	fmt.Fprintf(os.Stderr, "  image: [%d bytes]\n", len(req.Image))
	fmt.Fprintf(os.Stderr, "  size: %s\n", req.Size)
	fmt.Fprintf(os.Stderr, "  quality: %s\n", editQuality)
	fmt.Fprintln(os.Stderr, "---------------")
}

func (p *Provider) logResponse(statusCode int, bodyLen int) {
	if !p.verbose {
		return
	}

	fmt.Fprintln(os.Stderr, "--- RESPONSE ---")
	fmt.Fprintf(os.Stderr, "Status: %d\n", statusCode)
	fmt.Fprintf(os.Stderr, "Body: [%d bytes]\n", bodyLen)
	fmt.Fprintln(os.Stderr, "----------------")
}
