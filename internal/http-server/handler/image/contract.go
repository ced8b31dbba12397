package image

import (
	"context"

	"floresya-images/internal/domain"
)

type pipelineUsecase interface {
	UploadProductImage(ctx context.Context, productID int64, imageIndex int, isPrimary bool, filename, mimeType string, data []byte) ([]domain.ImageRecord, error)
	DeleteProductImages(ctx context.Context, productID int64) error
	UploadSiteImage(ctx context.Context, typ domain.SiteImageType, filename, mimeType string, data []byte) (*domain.SiteImage, error)
}

type galleryUsecase interface {
	Page(ctx context.Context, filter string, page, limit int) (*domain.GalleryPage, error)
	ProductsWithCounts(ctx context.Context, sortBy, direction string) ([]domain.ProductImageCount, error)
	SiteCurrent(ctx context.Context) (heroURL, logoURL string, err error)
}
