package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/manash/imgedit/internal/imgx"
	"github.com/manash/imgedit/internal/provider"
	"github.com/manash/imgedit/pkg/models"
)

// Edit submits one image and its instruction to /images/edits and returns
// a reference to the edited result. The outbound image is flattened to
// RGB, written to a temporary PNG whose removal is guaranteed on every
// exit path, and uploaded as multipart form data.
func (p *Provider) Edit(ctx context.Context, req *models.EditRequest) (models.ResultRef, error) {
	if err := req.Validate(); err != nil {
		return models.ResultRef{}, err
	}

	tempPath, err := p.writeTempPNG(req.Image)
	if err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: %v", provider.ErrEditFailed, err)
	}
	defer os.Remove(tempPath)

	ref, err := p.edit(ctx, req, tempPath)
	if err != nil {
		return models.ResultRef{}, err
	}
	return ref, nil
}

// writeTempPNG normalizes to 3-channel color and persists a lossless copy
// scoped to this call.
func (p *Provider) writeTempPNG(data []byte) (string, error) {
	img, err := imgx.DecodeBytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode input image: %w", err)
	}

	encoded, err := imgx.EncodePNG(imgx.FlattenRGB(img))
	if err != nil {
		return "", fmt.Errorf("failed to encode input image: %w", err)
	}

	f, err := os.CreateTemp("", "imgedit-upload-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(encoded); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return f.Name(), nil
}

func (p *Provider) edit(ctx context.Context, req *models.EditRequest, imagePath string) (models.ResultRef, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	imageFile, err := os.Open(imagePath)
	if err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: %v", provider.ErrEditFailed, err)
	}
	defer imageFile.Close()

	imagePart, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: failed to create image part: %v", provider.ErrEditFailed, err)
	}
	if _, err := io.Copy(imagePart, imageFile); err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: failed to write image: %v", provider.ErrEditFailed, err)
	}

	fields := map[string]string{
		"model":   editModel,
		"prompt":  req.Prompt,
		"quality": editQuality,
	}
	if req.Size != "" {
		fields["size"] = req.Size.String()
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return models.ResultRef{}, fmt.Errorf("%w: failed to write %s field: %v", provider.ErrEditFailed, name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: failed to close multipart writer: %v", provider.ErrEditFailed, err)
	}

	url := p.baseURL + "/images/edits"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: failed to create request: %v", provider.ErrEditFailed, err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	p.logMultipartRequest(http.MethodPost, url, httpReq.Header, req)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: %v", provider.ErrEditFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: failed to read response: %v", provider.ErrEditFailed, err)
	}

	p.logResponse(resp.StatusCode, len(bodyBytes))

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return models.ResultRef{}, fmt.Errorf("%w: failed to parse response: %v", provider.ErrEditFailed, err)
	}

	if apiResp.Error != nil {
		return models.ResultRef{}, fmt.Errorf("%w: %s", provider.ErrEditFailed, apiResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return models.ResultRef{}, fmt.Errorf("%w: status %d", provider.ErrEditFailed, resp.StatusCode)
	}

	return p.buildRef(apiResp.decode())
}

// buildRef matches the response variant exhaustively. Inline bytes are
// persisted to a scratch file; a bare URL is returned as-is.
func (p *Provider) buildRef(resp models.EditResponse) (models.ResultRef, error) {
	switch resp.Kind {
	case models.ResponseInlineBytes:
		decoded, err := base64.StdEncoding.DecodeString(string(resp.Data))
		if err != nil {
			return models.ResultRef{}, fmt.Errorf("%w: failed to decode image data: %v", provider.ErrEditFailed, err)
		}
		path := filepath.Join(p.scratchDir, fmt.Sprintf("edited_image_%d.png", time.Now().Unix()))
		if err := os.WriteFile(path, decoded, 0644); err != nil {
			return models.ResultRef{}, fmt.Errorf("%w: failed to persist edited image: %v", provider.ErrEditFailed, err)
		}
		return models.LocalRef(path), nil
	case models.ResponseRemoteURL:
		return models.RemoteRef(resp.URL), nil
	default:
		return models.ResultRef{}, fmt.Errorf("%w: %w", provider.ErrEditFailed, models.ErrEmptyResponse)
	}
}
