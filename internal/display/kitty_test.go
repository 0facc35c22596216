package display

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestKittyEncoder_Encode_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewKittyEncoder(&buf).Encode(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestKittyEncoder_Encode_SmallImage(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("small test data")

	if err := NewKittyEncoder(&buf).Encode(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "\x1b_G") {
		t.Error("output should start with escape sequence")
	}
	if !strings.HasSuffix(output, "\x1b\\") {
		t.Error("output should end with escape terminator")
	}
	for _, param := range []string{"a=T", "f=100", "q=2"} {
		if !strings.Contains(output, param) {
			t.Errorf("output should contain %s", param)
		}
	}
	if !strings.Contains(output, base64.StdEncoding.EncodeToString(data)) {
		t.Error("output should contain base64 encoded data")
	}
}

func TestKittyEncoder_Encode_LargeImage(t *testing.T) {
	var buf bytes.Buffer
	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i % 256)
	}

	if err := NewKittyEncoder(&buf).Encode(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if escCount := strings.Count(output, "\x1b_G"); escCount < 2 {
		t.Errorf("expected multiple chunks, got %d escape sequences", escCount)
	}
	if !strings.Contains(output, "m=1") {
		t.Error("output should contain 'more data' flag")
	}
	if !strings.Contains(output, "m=0") {
		t.Error("output should contain 'final chunk' flag")
	}
}

func TestKittyEncoder_Encode_ExactChunkSize(t *testing.T) {
	var buf bytes.Buffer

	// Base64 expands 3 bytes to 4 characters; this payload encodes to
	// exactly chunkSize characters.
	data := make([]byte, (chunkSize*3)/4)

	if err := NewKittyEncoder(&buf).Encode(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if escCount := strings.Count(buf.String(), "\x1b_G"); escCount != 1 {
		t.Errorf("expected single chunk for exact size, got %d", escCount)
	}
}
