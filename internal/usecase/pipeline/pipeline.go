package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"floresya-images/internal/domain"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Pipeline turns one uploaded photograph into its fixed derivative family
// and persists the family atomically. Buckets are processed one at a time
// so only a single derivative is held in memory per request.
type Pipeline struct {
	repo     imageRepository
	fileRepo fileRepository
	producer eventProducer
	deriver  *Deriver
	pool     *Pool
	logger   *zlog.Zerolog
	retries  retry.Strategy
}

// NewPipeline wires the pipeline's collaborators. producer may be nil when
// event publishing is disabled.
func NewPipeline(repo imageRepository, fileRepo fileRepository, producer eventProducer, pool *Pool, logger *zlog.Zerolog, retries retry.Strategy) *Pipeline {
	return &Pipeline{
		repo:     repo,
		fileRepo: fileRepo,
		producer: producer,
		deriver:  NewDeriver(),
		pool:     pool,
		logger:   logger,
		retries:  retries,
	}
}

// UploadProductImage runs the full chain for one product photograph:
// validate, derive four buckets, upload each, then persist all rows in one
// atomic call. An upload failure aborts the remaining buckets; already
// uploaded objects are left behind for the reconciliation sweep.
func (p *Pipeline) UploadProductImage(ctx context.Context, productID int64, imageIndex int, isPrimary bool, filename, mimeType string, data []byte) ([]domain.ImageRecord, error) {
	if imageIndex < 0 {
		return nil, ErrNegativeImageIdx
	}

	if err := ValidateUpload(int64(len(data)), mimeType); err != nil {
		return nil, err
	}

	if err := p.repo.ProductExists(ctx, productID); err != nil {
		return nil, err
	}

	contentHash := ContentHash(data)
	baseName := BaseName(filename)

	src, err := p.decodeOnPool(ctx, data)
	if err != nil {
		return nil, err
	}

	derivatives := make([]domain.Derivative, 0, len(domain.ProductBuckets))
	for _, bucket := range domain.ProductBuckets {
		d, err := p.deriveOnPool(ctx, src, bucket, domain.BucketBounds[bucket])
		if err != nil {
			return nil, fmt.Errorf("bucket %s: %w", bucket, err)
		}

		d.FileName = FileName(baseName, bucket)
		d.ContentHash = contentHash

		path := fmt.Sprintf("products/%d/%s", productID, d.FileName)
		url, err := p.fileRepo.SaveObject(ctx, path, d.Data, d.MimeType)
		if err != nil {
			return nil, fmt.Errorf("bucket %s: %w", bucket, err)
		}
		d.URL = url

		// drop the encoded bytes before the next bucket is produced
		d.Data = nil
		derivatives = append(derivatives, *d)
	}

	records, err := p.repo.CreateImageSet(ctx, productID, imageIndex, derivatives, isPrimary)
	if err != nil {
		return nil, fmt.Errorf("failed to persist image set: %w", err)
	}

	p.logger.Info().
		Int64("product_id", productID).
		Int("image_index", imageIndex).
		Bool("is_primary", isPrimary).
		Str("content_hash", contentHash).
		Int("records", len(records)).
		Msg("Image set created")

	p.publish(ctx, domain.ImageEvent{
		Type:       domain.EventImageSetCreated,
		ProductID:  productID,
		ImageIndex: imageIndex,
		URLs:       recordURLs(records),
		OccurredAt: time.Now(),
	})

	return records, nil
}

// DeleteProductImages removes a product's entire image set. Deleting an
// already-empty set succeeds.
func (p *Pipeline) DeleteProductImages(ctx context.Context, productID int64) error {
	if err := p.repo.DeleteImageSet(ctx, productID); err != nil {
		return err
	}

	p.logger.Info().Int64("product_id", productID).Msg("Image set deleted")

	p.publish(ctx, domain.ImageEvent{
		Type:       domain.EventImageSetDeleted,
		ProductID:  productID,
		OccurredAt: time.Now(),
	})

	return nil
}

// UploadSiteImage runs the reduced chain for the hero/logo singleton slots:
// one bucket, no image index, the previous value is overwritten.
func (p *Pipeline) UploadSiteImage(ctx context.Context, typ domain.SiteImageType, filename, mimeType string, data []byte) (*domain.SiteImage, error) {
	box, ok := domain.SiteBounds[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSiteType, typ)
	}

	if err := ValidateUpload(int64(len(data)), mimeType); err != nil {
		return nil, err
	}

	src, err := p.decodeOnPool(ctx, data)
	if err != nil {
		return nil, err
	}

	d, err := p.deriveOnPool(ctx, src, domain.SizeBucket(typ), box)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", typ, err)
	}

	path := fmt.Sprintf("site/%s", FileName(BaseName(filename), domain.SizeBucket(typ)))
	url, err := p.fileRepo.SaveObject(ctx, path, d.Data, d.MimeType)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", typ, err)
	}

	img := domain.SiteImage{Type: typ, URL: url}
	if err := p.repo.UpsertSiteImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to persist site image: %w", err)
	}

	p.logger.Info().Str("type", string(typ)).Str("url", url).Msg("Site image set")

	p.publish(ctx, domain.ImageEvent{
		Type:       domain.EventSiteImageSet,
		SiteType:   string(typ),
		URLs:       []string{url},
		OccurredAt: time.Now(),
	})

	return &img, nil
}

func (p *Pipeline) decodeOnPool(ctx context.Context, data []byte) (image.Image, error) {
	var src image.Image
	var decodeErr error

	err := p.pool.Do(ctx, func() {
		src, decodeErr = p.deriver.Decode(data)
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return src, nil
}

func (p *Pipeline) deriveOnPool(ctx context.Context, src image.Image, bucket domain.SizeBucket, box domain.BoundingBox) (*domain.Derivative, error) {
	var d *domain.Derivative
	var deriveErr error

	err := p.pool.Do(ctx, func() {
		d, deriveErr = p.deriver.Derive(src, bucket, box)
	})
	if err != nil {
		return nil, err
	}
	if deriveErr != nil {
		return nil, deriveErr
	}

	return d, nil
}

func (p *Pipeline) publish(ctx context.Context, event domain.ImageEvent) {
	if p.producer == nil {
		return
	}

	if err := p.producer.SendEvent(ctx, p.retries, event); err != nil {
		p.logger.Error().Err(err).Str("event", string(event.Type)).Msg("Failed to publish event")
	}
}

func recordURLs(records []domain.ImageRecord) []string {
	urls := make([]string, 0, len(records))
	for _, r := range records {
		urls = append(urls, r.URL)
	}
	return urls
}
