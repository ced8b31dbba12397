package domain

import "time"

// SizeBucket names one of the fixed derivative sizes generated per upload.
type SizeBucket string

const (
	BucketThumb  SizeBucket = "thumb"
	BucketSmall  SizeBucket = "small"
	BucketMedium SizeBucket = "medium"
	BucketLarge  SizeBucket = "large"
)

// BoundingBox is the maximum width/height a bucket's derivative may occupy.
type BoundingBox struct {
	Width  int
	Height int
}

// ProductBuckets is the fixed derivative table, largest first. The order is
// also the processing order: one derivative is held in memory at a time.
var ProductBuckets = []SizeBucket{BucketLarge, BucketMedium, BucketSmall, BucketThumb}

var BucketBounds = map[SizeBucket]BoundingBox{
	BucketLarge:  {Width: 1200, Height: 1200},
	BucketMedium: {Width: 600, Height: 600},
	BucketSmall:  {Width: 300, Height: 300},
	BucketThumb:  {Width: 150, Height: 150},
}

// Derivative is one resized, re-encoded output held in memory during a
// pipeline run. It is never persisted as-is.
type Derivative struct {
	Bucket      SizeBucket
	Data        []byte
	Width       int
	Height      int
	FileName    string
	MimeType    string
	ContentHash string
	URL         string
}

// ImageRecord is one persisted derivative row. Four rows sharing one
// ContentHash and one ImageIndex make up a logical photograph.
type ImageRecord struct {
	ID          int64
	ProductID   int64
	ImageIndex  int
	Bucket      SizeBucket
	URL         string
	ContentHash string
	MimeType    string
	IsPrimary   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GalleryEntry is an ImageRecord joined with its owning product's name.
// ProductName is empty when the owning product no longer exists.
type GalleryEntry struct {
	ImageRecord
	ProductName string
}

type GalleryFilter string

const (
	FilterAll    GalleryFilter = "all"
	FilterUsed   GalleryFilter = "used"
	FilterUnused GalleryFilter = "unused"
)

// GalleryPage is one page of the gallery read model.
type GalleryPage struct {
	Entries    []GalleryEntry
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// ProductImageCount annotates a product with the number of logical
// photographs (distinct image indexes) it owns.
type ProductImageCount struct {
	ProductID  int64
	Name       string
	ImageCount int
}

type SiteImageType string

const (
	SiteImageHero SiteImageType = "hero"
	SiteImageLogo SiteImageType = "logo"
)

// SiteImage is a singleton slot: at most one live value per type.
type SiteImage struct {
	Type SiteImageType
	URL  string
}

// SiteBounds maps a site image type to its single bucket's bounding box.
var SiteBounds = map[SiteImageType]BoundingBox{
	SiteImageHero: {Width: 1200, Height: 600},
	SiteImageLogo: {Width: 200, Height: 200},
}

const (
	MaxUploadSize = 5 << 20
	WebPQuality   = 85

	MimeWebP = "image/webp"

	DefaultHeroURL = "/images/defaults/hero.webp"
	DefaultLogoURL = "/images/defaults/logo.webp"
)

// AllowedMimeTypes are the inbound formats the validator accepts.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}
