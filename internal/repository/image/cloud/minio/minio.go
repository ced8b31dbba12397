package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"floresya-images/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

// cache headers for derivative objects; names are unique per upload so
// aggressive caching is safe
const cacheControl = "public, max-age=31536000, immutable"

type FileRepository struct {
	client *minio.Client
	cfg    config.StorageConfig
	logger *zlog.Zerolog
}

func NewFileRepository(ctx context.Context, cfg config.StorageConfig, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	repo := &FileRepository{
		client: client,
		cfg:    cfg,
		logger: logger,
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *FileRepository) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := r.client.MakeBucket(ctx, r.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		r.logger.Info().Str("bucket", r.cfg.Bucket).Msg("Created storage bucket")
	}

	return nil
}

// SaveObject writes one derivative to the sink and returns its public URL.
// The path is deterministic, so a retried upload overwrites the same object
// instead of allocating a new one.
func (r *FileRepository) SaveObject(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, r.cfg.Bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", path, err)
	}

	return r.PublicURL(path), nil
}

func (r *FileRepository) PublicURL(path string) string {
	return strings.TrimRight(r.cfg.PublicBaseURL, "/") + "/" + path
}

// ObjectPath is the inverse of PublicURL; the bool reports whether the URL
// belongs to this sink.
func (r *FileRepository) ObjectPath(url string) (string, bool) {
	base := strings.TrimRight(r.cfg.PublicBaseURL, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", false
	}
	return strings.TrimPrefix(url, base), true
}

func (r *FileRepository) RemoveObject(ctx context.Context, path string) error {
	err := r.client.RemoveObject(ctx, r.cfg.Bucket, path, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", path, err)
	}
	return nil
}

// ObjectInfo is the subset of sink object metadata the reconciliation sweep
// needs.
type ObjectInfo struct {
	Key          string
	LastModified int64
}

// ListObjects walks every object under prefix.
func (r *FileRepository) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo

	for obj := range r.client.ListObjects(ctx, r.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, obj.Err)
		}
		infos = append(infos, ObjectInfo{
			Key:          obj.Key,
			LastModified: obj.LastModified.Unix(),
		})
	}

	return infos, nil
}
