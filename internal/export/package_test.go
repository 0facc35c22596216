package export

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/manash/imgedit/internal/imgx"
	"github.com/manash/imgedit/internal/security"
	"github.com/manash/imgedit/pkg/models"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := imgx.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return data
}

func testPackager(t *testing.T) *Packager {
	t.Helper()
	return &Packager{
		scratchDir: t.TempDir(),
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
		now:        fixedClock,
	}
}

func readArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()

	entries := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		rc.Close()
		entries[f.Name] = data
	}
	return entries
}

func TestPackageMixedSources(t *testing.T) {
	security.SetSkipValidation(true)
	defer security.SetSkipValidation(false)

	remote := pngBytes(t, color.RGBA{R: 255, A: 255})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(remote)
	}))
	defer server.Close()

	local := filepath.Join(t.TempDir(), "edited_image_1.png")
	if err := os.WriteFile(local, pngBytes(t, color.RGBA{B: 255, A: 255}), 0644); err != nil {
		t.Fatalf("write local fixture: %v", err)
	}

	p := testPackager(t)
	refs := map[int]models.ResultRef{
		0: models.RemoteRef(server.URL + "/result.png"),
		2: models.LocalRef(local),
	}
	names := []string{"photo one.jpg", "unused.png", "room.png"}

	path, err := p.Package(context.Background(), refs, names)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if filepath.Base(path) != "edited_images_20240601_150405.zip" {
		t.Errorf("archive name = %q", filepath.Base(path))
	}

	entries := readArchive(t, path)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, name := range []string{"edited_photo one.jpg.png", "edited_room.png"} {
		data, ok := entries[name]
		if !ok {
			t.Fatalf("missing archive entry %q (have %v)", name, entryNames(entries))
		}
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			t.Errorf("entry %q is not a PNG: %v", name, err)
		}
	}
}

func TestPackageSkipsUnresolvable(t *testing.T) {
	security.SetSkipValidation(true)
	defer security.SetSkipValidation(false)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, color.White))
	}))
	defer server.Close()

	p := testPackager(t)
	refs := map[int]models.ResultRef{
		0: models.RemoteRef(server.URL),
		1: models.LocalRef(filepath.Join(t.TempDir(), "does-not-exist.png")),
	}

	path, err := p.Package(context.Background(), refs, []string{"kept.jpg", "gone.jpg"})
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	entries := readArchive(t, path)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (unreadable path skipped)", len(entries))
	}
	if _, ok := entries["edited_kept.jpg.png"]; !ok {
		t.Errorf("surviving entry missing, have %v", entryNames(entries))
	}
}

func TestPackageRejectsUntrustedURL(t *testing.T) {
	p := testPackager(t)
	p.strictURLs = true

	refs := map[int]models.ResultRef{
		0: models.RemoteRef("https://evil.example.com/image.png"),
	}

	path, err := p.Package(context.Background(), refs, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if entries := readArchive(t, path); len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestEntryName(t *testing.T) {
	names := []string{"room.jpg", "already.png", "bad/../name.jpeg"}

	tests := []struct {
		index int
		want  string
	}{
		{0, "edited_room.jpg.png"},
		{1, "edited_already.png"},
		{2, "edited_name.jpeg.png"},
		{5, "edited_image_6.png"},
	}

	for _, tt := range tests {
		if got := entryName(tt.index, names); got != tt.want {
			t.Errorf("entryName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func entryNames(entries map[string][]byte) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	return names
}
