package image

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSiteImageNotFound = errors.New("site image not found")
	ErrNoRowsInserted    = errors.New("image set insert returned no rows")
	ErrStorageError      = errors.New("storage error")
)
