package models

import (
	"errors"
	"testing"
)

func TestEditRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *EditRequest
		wantErr error
	}{
		{
			name:    "valid request",
			req:     &EditRequest{Image: []byte{1, 2, 3}, Prompt: "add a window", Size: SizeSquare},
			wantErr: nil,
		},
		{
			name:    "auto size",
			req:     NewEditRequest([]byte{1}, "declutter"),
			wantErr: nil,
		},
		{
			name:    "missing image",
			req:     &EditRequest{Prompt: "declutter"},
			wantErr: ErrNoImageData,
		},
		{
			name:    "empty prompt",
			req:     &EditRequest{Image: []byte{1}},
			wantErr: ErrEmptyPrompt,
		},
		{
			name:    "bogus size",
			req:     &EditRequest{Image: []byte{1}, Prompt: "p", Size: "640x480"},
			wantErr: ErrInvalidSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSizeIsValid(t *testing.T) {
	for _, s := range ValidSizes() {
		if !s.IsValid() {
			t.Errorf("Size(%q).IsValid() = false, want true", s)
		}
	}
	if Size("2048x2048").IsValid() {
		t.Error("Size(2048x2048).IsValid() = true, want false")
	}
}

func TestResultRefString(t *testing.T) {
	remote := RemoteRef("https://example.com/edited.png")
	if remote.String() != "https://example.com/edited.png" {
		t.Errorf("remote String() = %q", remote.String())
	}
	local := LocalRef("/tmp/edited_image_1.png")
	if local.String() != "/tmp/edited_image_1.png" {
		t.Errorf("local String() = %q", local.String())
	}
}
