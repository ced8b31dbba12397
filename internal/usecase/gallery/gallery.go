package gallery

import (
	"context"
	"errors"
	"fmt"

	"floresya-images/internal/domain"
	repoimage "floresya-images/internal/repository/image"

	"github.com/wb-go/wbf/zlog"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

var (
	ErrInvalidFilter = errors.New("invalid gallery filter")
	ErrInvalidSort   = errors.New("invalid sort parameter")
)

// Usecase is the read model over persisted image rows.
type Usecase struct {
	repo   imageRepository
	logger *zlog.Zerolog
}

func NewUsecase(repo imageRepository, logger *zlog.Zerolog) *Usecase {
	return &Usecase{
		repo:   repo,
		logger: logger,
	}
}

// Page returns one gallery page. Empty filter means all; page and limit are
// clamped into their valid ranges rather than rejected.
func (u *Usecase) Page(ctx context.Context, filter string, page, limit int) (*domain.GalleryPage, error) {
	f, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	result, err := u.repo.Gallery(ctx, f, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery page: %w", err)
	}

	return result, nil
}

// ProductsWithCounts lists products annotated with their image-set size.
func (u *Usecase) ProductsWithCounts(ctx context.Context, sortBy, direction string) ([]domain.ProductImageCount, error) {
	switch sortBy {
	case "", "name":
		sortBy = "name"
	case "image_count":
	default:
		return nil, fmt.Errorf("%w: sort_by=%q", ErrInvalidSort, sortBy)
	}

	switch direction {
	case "", "asc":
		direction = "asc"
	case "desc":
	default:
		return nil, fmt.Errorf("%w: sort_direction=%q", ErrInvalidSort, direction)
	}

	counts, err := u.repo.ProductsWithCounts(ctx, sortBy, direction)
	if err != nil {
		return nil, fmt.Errorf("failed to load product counts: %w", err)
	}

	return counts, nil
}

// SiteCurrent returns the live hero and logo URLs, falling back to the
// fixed defaults when a slot has never been set.
func (u *Usecase) SiteCurrent(ctx context.Context) (heroURL, logoURL string, err error) {
	heroURL, err = u.siteURL(ctx, domain.SiteImageHero, domain.DefaultHeroURL)
	if err != nil {
		return "", "", err
	}

	logoURL, err = u.siteURL(ctx, domain.SiteImageLogo, domain.DefaultLogoURL)
	if err != nil {
		return "", "", err
	}

	return heroURL, logoURL, nil
}

func (u *Usecase) siteURL(ctx context.Context, typ domain.SiteImageType, fallback string) (string, error) {
	img, err := u.repo.GetSiteImage(ctx, typ)
	if errors.Is(err, repoimage.ErrSiteImageNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load site image %s: %w", typ, err)
	}

	return img.URL, nil
}

func parseFilter(filter string) (domain.GalleryFilter, error) {
	switch filter {
	case "", string(domain.FilterAll):
		return domain.FilterAll, nil
	case string(domain.FilterUsed):
		return domain.FilterUsed, nil
	case string(domain.FilterUnused):
		return domain.FilterUnused, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
}
