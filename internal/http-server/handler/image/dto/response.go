package dto

import "time"

type ImageRecordResponse struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ImageIndex  int       `json:"image_index"`
	SizeBucket  string    `json:"size_bucket"`
	URL         string    `json:"url"`
	ContentHash string    `json:"content_hash"`
	MimeType    string    `json:"mime_type"`
	IsPrimary   bool      `json:"is_primary"`
	CreatedAt   time.Time `json:"created_at"`
}

type UploadResponse struct {
	ProductID  int64                 `json:"product_id"`
	ImageIndex int                   `json:"image_index"`
	Records    []ImageRecordResponse `json:"records"`
	PrimaryURL string                `json:"primary_url,omitempty"`
}

type GalleryEntryResponse struct {
	ImageRecordResponse
	ProductName string `json:"product_name,omitempty"`
}

type GalleryResponse struct {
	Entries    []GalleryEntryResponse `json:"entries"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

type ProductCountResponse struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	ImageCount int    `json:"image_count"`
}

type SiteImageResponse struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type SiteCurrentResponse struct {
	HeroURL string `json:"hero_url"`
	LogoURL string `json:"logo_url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
