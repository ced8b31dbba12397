package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"floresya-images/internal/domain"
	"floresya-images/internal/repository/image"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type ImagesRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewImagesRepository(db *dbpg.DB, retries retry.Strategy) *ImagesRepository {
	return &ImagesRepository{
		db:      db,
		retries: retries,
	}
}

func (r *ImagesRepository) ProductExists(ctx context.Context, productID int64) error {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, productID)
	if err != nil {
		return fmt.Errorf("failed to query product: %w", err)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("failed to scan product existence: %w", err)
	}

	if !exists {
		return image.ErrProductNotFound
	}

	return nil
}

// CreateImageSet inserts all derivative rows of one logical photograph in a
// single transaction. When isPrimary is set, the previous primary group for
// the product is unflagged in the same transaction. Either every row lands
// or none does; individual rows are never retried.
func (r *ImagesRepository) CreateImageSet(ctx context.Context, productID int64, imageIndex int, derivatives []domain.Derivative, isPrimary bool) ([]domain.ImageRecord, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if isPrimary {
		_, err := tx.ExecContext(ctx,
			`UPDATE product_images SET is_primary = FALSE, updated_at = NOW()
			 WHERE product_id = $1 AND is_primary = TRUE`,
			productID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to clear previous primary: %w", err)
		}
	}

	insert := `
		INSERT INTO product_images (
			product_id, image_index, size_bucket, url,
			content_hash, mime_type, is_primary, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	records := make([]domain.ImageRecord, 0, len(derivatives))
	for _, d := range derivatives {
		rec := domain.ImageRecord{
			ProductID:   productID,
			ImageIndex:  imageIndex,
			Bucket:      d.Bucket,
			URL:         d.URL,
			ContentHash: d.ContentHash,
			MimeType:    d.MimeType,
			IsPrimary:   isPrimary,
		}

		err := tx.QueryRowContext(ctx, insert,
			productID,
			imageIndex,
			d.Bucket,
			d.URL,
			d.ContentHash,
			d.MimeType,
			isPrimary,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert image record: %w", err)
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, image.ErrNoRowsInserted
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit image set: %w", err)
	}

	return records, nil
}

// DeleteImageSet removes every record belonging to a product. Deleting an
// already-empty set succeeds.
func (r *ImagesRepository) DeleteImageSet(ctx context.Context, productID int64) error {
	query := `DELETE FROM product_images WHERE product_id = $1`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query, productID)
	if err != nil {
		return fmt.Errorf("failed to delete image set: %w", err)
	}

	return nil
}

func galleryWhere(filter domain.GalleryFilter) string {
	switch filter {
	case domain.FilterUsed:
		return "WHERE p.id IS NOT NULL"
	case domain.FilterUnused:
		return "WHERE p.id IS NULL"
	default:
		return ""
	}
}

// Gallery returns one page of image records joined with the owning product's
// name, most recent first. An empty result yields an empty page, not an
// error.
func (r *ImagesRepository) Gallery(ctx context.Context, filter domain.GalleryFilter, page, limit int) (*domain.GalleryPage, error) {
	where := galleryWhere(filter)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM product_images i
		LEFT JOIN products p ON p.id = i.product_id
		%s
	`, where)

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, countQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count gallery rows: %w", err)
	}

	var total int
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to scan gallery count: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT i.id, i.product_id, i.image_index, i.size_bucket, i.url,
		       i.content_hash, i.mime_type, i.is_primary, i.created_at, i.updated_at,
		       COALESCE(p.name, '')
		FROM product_images i
		LEFT JOIN products p ON p.id = i.product_id
		%s
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $1 OFFSET $2
	`, where)

	rows, err := r.db.QueryWithRetry(ctx, r.retries, listQuery, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query gallery: %w", err)
	}
	defer rows.Close()

	entries := []domain.GalleryEntry{}
	for rows.Next() {
		var e domain.GalleryEntry
		err := rows.Scan(
			&e.ID,
			&e.ProductID,
			&e.ImageIndex,
			&e.Bucket,
			&e.URL,
			&e.ContentHash,
			&e.MimeType,
			&e.IsPrimary,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.ProductName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gallery rows: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &domain.GalleryPage{
		Entries:    entries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ProductsWithCounts lists every product with the number of logical
// photographs (distinct image indexes) it owns.
func (r *ImagesRepository) ProductsWithCounts(ctx context.Context, sortBy, direction string) ([]domain.ProductImageCount, error) {
	orderCol := "p.name"
	if sortBy == "image_count" {
		orderCol = "image_count"
	}

	orderDir := "ASC"
	if direction == "desc" {
		orderDir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, COUNT(DISTINCT i.image_index) AS image_count
		FROM products p
		LEFT JOIN product_images i ON i.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY %s %s, p.id ASC
	`, orderCol, orderDir)

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.ProductImageCount
	for rows.Next() {
		var c domain.ProductImageCount
		if err := rows.Scan(&c.ProductID, &c.Name, &c.ImageCount); err != nil {
			return nil, fmt.Errorf("failed to scan product count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product counts: %w", err)
	}

	return counts, nil
}

// UpsertSiteImage overwrites the single slot for a site image type.
func (r *ImagesRepository) UpsertSiteImage(ctx context.Context, img domain.SiteImage) error {
	query := `
		INSERT INTO site_images (type, url, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (type) DO UPDATE SET url = EXCLUDED.url, updated_at = NOW()
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query, img.Type, img.URL)
	if err != nil {
		return fmt.Errorf("failed to upsert site image: %w", err)
	}

	return nil
}

func (r *ImagesRepository) GetSiteImage(ctx context.Context, typ domain.SiteImageType) (*domain.SiteImage, error) {
	query := `SELECT type, url FROM site_images WHERE type = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to query site image: %w", err)
	}

	var img domain.SiteImage
	err = row.Scan(&img.Type, &img.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, image.ErrSiteImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan site image: %w", err)
	}

	return &img, nil
}

// HasRecordWithURL reports whether any persisted row references the given
// public URL. Used by the reconciliation sweep.
func (r *ImagesRepository) HasRecordWithURL(ctx context.Context, url string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM product_images WHERE url = $1)
		    OR EXISTS (SELECT 1 FROM site_images WHERE url = $1)
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, url)
	if err != nil {
		return false, fmt.Errorf("failed to query url reference: %w", err)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to scan url reference: %w", err)
	}

	return exists, nil
}
