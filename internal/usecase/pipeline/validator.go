package pipeline

import (
	"fmt"

	"floresya-images/internal/domain"
)

// ValidateUpload checks an inbound file against the size/type policy. It
// runs before any decode or resize work and performs no I/O. A file of
// exactly the maximum size passes.
func ValidateUpload(size int64, mimeType string) error {
	if size <= 0 {
		return ErrEmptyFile
	}

	if size > domain.MaxUploadSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, domain.MaxUploadSize)
	}

	if !domain.AllowedMimeTypes[mimeType] {
		return fmt.Errorf("%w: %q (allowed: image/jpeg, image/png, image/webp)", ErrInvalidMimeType, mimeType)
	}

	return nil
}
