package pipeline

import (
	"context"

	"floresya-images/internal/domain"

	"github.com/wb-go/wbf/retry"
)

type imageRepository interface {
	ProductExists(ctx context.Context, productID int64) error
	CreateImageSet(ctx context.Context, productID int64, imageIndex int, derivatives []domain.Derivative, isPrimary bool) ([]domain.ImageRecord, error)
	DeleteImageSet(ctx context.Context, productID int64) error
	UpsertSiteImage(ctx context.Context, img domain.SiteImage) error
}

type fileRepository interface {
	SaveObject(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

type eventProducer interface {
	SendEvent(ctx context.Context, strategy retry.Strategy, event domain.ImageEvent) error
}
