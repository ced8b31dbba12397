package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"floresya-images/internal/domain"

	"github.com/google/uuid"
)

const maxStemLen = 40

// ContentHash digests the original uploaded bytes. All derivatives of one
// upload share this hash; derivatives themselves are not hashed separately.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BaseName builds the name shared by a derivative set: a millisecond
// timestamp, a short random token and the sanitized stem of the original
// filename. Two uploads of identical bytes get distinct base names.
func BaseName(originalFilename string) string {
	stem := sanitizeStem(originalFilename)
	token := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), token, stem)
}

// FileName appends the bucket suffix and the derivative extension.
func FileName(baseName string, bucket domain.SizeBucket) string {
	return fmt.Sprintf("%s_%s.webp", baseName, bucket)
}

func sanitizeStem(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.ToLower(stem)

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}

	out := strings.Trim(b.String(), "-")
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}

	if len(out) > maxStemLen {
		out = out[:maxStemLen]
	}
	if out == "" {
		out = "image"
	}

	return out
}
