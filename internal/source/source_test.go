package source

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/manash/imgedit/internal/workflow"
)

func pngUpload(t *testing.T, name string) Upload {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return Upload{Name: name, Data: buf.Bytes()}
}

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	var err error
	switch filepath.Ext(name) {
	case ".png", ".PNG":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadUploaded(t *testing.T) {
	sess := workflow.NewSession()

	warnings := LoadUploaded(sess, []Upload{
		pngUpload(t, "a.png"),
		{Name: "broken.png", Data: []byte("not an image")},
		pngUpload(t, "b.png"),
	})

	if sess.Len() != 2 {
		t.Errorf("Len() = %d, want 2", sess.Len())
	}
	if len(warnings) != 1 || warnings[0].Name != "broken.png" {
		t.Errorf("warnings = %v, want one for broken.png", warnings)
	}
}

func TestLoadUploadedDuplicatesFirstWins(t *testing.T) {
	sess := workflow.NewSession()

	LoadUploaded(sess, []Upload{pngUpload(t, "a.png")})
	warnings := LoadUploaded(sess, []Upload{pngUpload(t, "a.png"), pngUpload(t, "b.png")})

	if len(warnings) != 0 {
		t.Errorf("warnings = %v, duplicates should be silent", warnings)
	}
	if sess.Len() != 2 {
		t.Errorf("Len() = %d, want 2", sess.Len())
	}
	if sess.Images[0].Name != "a.png" || sess.Images[1].Name != "b.png" {
		t.Errorf("order = %v", sess.ImageNames())
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "one.jpg")
	writeImage(t, dir, "two.png")
	writeImage(t, dir, "THREE.JPEG")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "corrupt.png"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	sess := workflow.NewSession()
	loaded, warnings, err := LoadDirectory(sess, dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	if loaded != 3 {
		t.Errorf("loaded = %d, want 3", loaded)
	}
	if sess.Len() != 3 {
		t.Errorf("Len() = %d, want 3", sess.Len())
	}
	if len(warnings) != 1 || warnings[0].Name != "corrupt.png" {
		t.Errorf("warnings = %v, want one for corrupt.png", warnings)
	}
	for _, img := range sess.Images {
		if img.Source != workflow.SourceDirectory {
			t.Errorf("image %s source = %v", img.Name, img.Source)
		}
	}
}

func TestLoadDirectoryReplacesBatch(t *testing.T) {
	sess := workflow.NewSession()
	LoadUploaded(sess, []Upload{pngUpload(t, "old.png")})
	sess.Prompts.Set(0, "stale prompt")

	dir := t.TempDir()
	writeImage(t, dir, "new.png")

	if _, _, err := LoadDirectory(sess, dir); err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	if sess.Len() != 1 || sess.Images[0].Name != "new.png" {
		t.Errorf("batch = %v, want only new.png", sess.ImageNames())
	}
	if sess.Prompts.Len() != 0 {
		t.Error("prompts survived the directory load")
	}
}

func TestLoadDirectoryNotFound(t *testing.T) {
	sess := workflow.NewSession()

	_, _, err := LoadDirectory(sess, filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	// A file is not a directory either.
	f := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadDirectory(sess, f); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
