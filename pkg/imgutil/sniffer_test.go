package imgutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0, 0, 0, 0, 0}, KindJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d}, KindPNG},
		{"tiff le", []byte{'I', 'I', 0x2a, 0, 8, 0, 0, 0, 0, 0, 0, 0}, KindTIFF},
		{"tiff be", []byte{'M', 'M', 0, 0x2a, 0, 0, 0, 8, 0, 0, 0, 0}, KindTIFF},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBP"), KindWebP},
		{"avif", []byte("\x00\x00\x00\x1cftypavif"), KindAVIF},
		{"text", []byte("hello, world"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectHeader(tt.header)
			if err != nil {
				t.Fatalf("DetectHeader: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSniffShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.png")
	if err := os.WriteFile(path, []byte{0x89, 'P'}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := SniffFile(path)
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
	if _, err := SniffBytes([]byte{1, 2, 3}); !errors.Is(err, ErrShortHeader) {
		t.Fatalf("SniffBytes: expected ErrShortHeader, got %v", err)
	}
}

func TestDecodable(t *testing.T) {
	for _, k := range []Kind{KindJPEG, KindPNG, KindTIFF} {
		if !k.Decodable() {
			t.Errorf("%v should be decodable", k)
		}
	}
	for _, k := range []Kind{KindUnknown, KindWebP, KindAVIF} {
		if k.Decodable() {
			t.Errorf("%v should not be decodable", k)
		}
	}
}
