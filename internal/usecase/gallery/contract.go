package gallery

import (
	"context"

	"floresya-images/internal/domain"
)

type imageRepository interface {
	Gallery(ctx context.Context, filter domain.GalleryFilter, page, limit int) (*domain.GalleryPage, error)
	ProductsWithCounts(ctx context.Context, sortBy, direction string) ([]domain.ProductImageCount, error)
	GetSiteImage(ctx context.Context, typ domain.SiteImageType) (*domain.SiteImage, error)
}
