package pipeline

import "errors"

var (
	ErrInvalidMimeType  = errors.New("unsupported image type")
	ErrFileTooLarge     = errors.New("file exceeds maximum size")
	ErrEmptyFile        = errors.New("file is empty")
	ErrDecodeFailed     = errors.New("failed to decode image")
	ErrUnknownSiteType  = errors.New("unknown site image type")
	ErrNegativeImageIdx = errors.New("image index must be non-negative")
)
