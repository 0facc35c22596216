package display

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manash/imgedit/internal/security"
	"github.com/manash/imgedit/pkg/models"
)

func TestDisplayLocalRef(t *testing.T) {
	data := []byte("png bytes go here")
	path := filepath.Join(t.TempDir(), "edited_image_1.png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var buf bytes.Buffer
	d := New(&buf)

	if err := d.Display(context.Background(), models.LocalRef(path)); err != nil {
		t.Fatalf("Display() error = %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if !strings.Contains(buf.String(), encoded) {
		t.Error("output should contain base64 encoded image data")
	}
}

func TestDisplayRemoteRef(t *testing.T) {
	security.SetSkipValidation(true)
	defer security.SetSkipValidation(false)

	data := []byte("remote png")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	var buf bytes.Buffer
	d := New(&buf)

	if err := d.Display(context.Background(), models.RemoteRef(server.URL)); err != nil {
		t.Fatalf("Display() error = %v", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if !strings.Contains(buf.String(), encoded) {
		t.Error("output should contain base64 encoded image data")
	}
}

func TestDisplayRemoteRefDownloadFailure(t *testing.T) {
	security.SetSkipValidation(true)
	defer security.SetSkipValidation(false)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var buf bytes.Buffer
	d := New(&buf)

	err := d.Display(context.Background(), models.RemoteRef(server.URL))
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Display() error = %v, want download status failure", err)
	}
}

func TestDisplayEmptyRef(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	if err := d.Display(context.Background(), models.ResultRef{}); err == nil {
		t.Error("Display() with empty ref should return error")
	}
}

func TestIsTerminalSupported(t *testing.T) {
	for _, env := range []string{"TERM_PROGRAM", "KITTY_WINDOW_ID", "ITERM_SESSION_ID", "TERM"} {
		t.Setenv(env, "")
	}

	if IsTerminalSupported() {
		t.Error("IsTerminalSupported() = true with no terminal hints")
	}

	t.Setenv("TERM_PROGRAM", "kitty")
	if !IsTerminalSupported() {
		t.Error("IsTerminalSupported() = false with TERM_PROGRAM=kitty")
	}

	t.Setenv("TERM_PROGRAM", "")
	t.Setenv("TERM", "xterm-kitty")
	if !IsTerminalSupported() {
		t.Error("IsTerminalSupported() = false with TERM=xterm-kitty")
	}
}
