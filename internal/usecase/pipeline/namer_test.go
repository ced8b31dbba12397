package pipeline

import (
	"strings"
	"testing"

	"floresya-images/internal/domain"
)

func TestContentHash(t *testing.T) {
	data := []byte("same bytes")

	if ContentHash(data) != ContentHash([]byte("same bytes")) {
		t.Error("identical bytes should produce identical hashes")
	}

	if ContentHash(data) == ContentHash([]byte("other bytes")) {
		t.Error("different bytes should produce different hashes")
	}

	if got := len(ContentHash(data)); got != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", got)
	}
}

func TestBaseName_DistinctPerUpload(t *testing.T) {
	a := BaseName("rose.jpg")
	b := BaseName("rose.jpg")

	if a == b {
		t.Errorf("two uploads of the same file produced the same base name %q", a)
	}

	if !strings.HasSuffix(a, "_rose") {
		t.Errorf("base name %q should end with the sanitized stem", a)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("1700000000000_abcd1234_rose", domain.BucketThumb)
	want := "1700000000000_abcd1234_rose_thumb.webp"

	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestSanitizeStem(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "rose.jpg", want: "rose"},
		{name: "uppercase and spaces", in: "Red Rose Bouquet.PNG", want: "red-rose-bouquet"},
		{name: "path stripped", in: "/tmp/uploads/lily.webp", want: "lily"},
		{name: "special chars dropped", in: "tulipán(1)!.jpeg", want: "tulipn1"},
		{name: "empty falls back", in: "....jpg", want: "image"},
		{name: "long stem truncated", in: strings.Repeat("a", 100) + ".jpg", want: strings.Repeat("a", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeStem(tt.in); got != tt.want {
				t.Errorf("sanitizeStem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
