package imgx

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBytes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	t.Run("png", func(t *testing.T) {
		got, err := DecodeBytes(pngBytes(t, img))
		if err != nil {
			t.Fatalf("DecodeBytes() error = %v", err)
		}
		if got.Bounds().Dx() != 4 {
			t.Errorf("width = %d, want 4", got.Bounds().Dx())
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			t.Fatalf("encode jpeg: %v", err)
		}
		if _, err := DecodeBytes(buf.Bytes()); err != nil {
			t.Fatalf("DecodeBytes() error = %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := DecodeBytes([]byte("not an image")); err == nil {
			t.Error("DecodeBytes() error = nil, want error")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := DecodeBytes(nil); err != ErrEmptyImage {
			t.Errorf("DecodeBytes() error = %v, want ErrEmptyImage", err)
		}
	})
}

func TestFlattenRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	// Fully transparent pixel should come out white.
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 0})
	// Opaque red stays red.
	src.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})

	flat := FlattenRGB(src)

	r, g, b, a := flat.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("transparent pixel = %d %d %d %d, want white opaque", r>>8, g>>8, b>>8, a>>8)
	}

	r, g, b, _ = flat.At(1, 1).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("opaque pixel = %d %d %d, want red", r>>8, g>>8, b>>8)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	img := FlattenRGB(image.NewRGBA(image.Rect(0, 0, 3, 5)))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	decoded, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
