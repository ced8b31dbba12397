package domain

import "time"

type EventType string

const (
	EventImageSetCreated EventType = "image_set.created"
	EventImageSetDeleted EventType = "image_set.deleted"
	EventSiteImageSet    EventType = "site_image.set"
)

// ImageEvent is published after a persistence call commits. Consumers
// (cache invalidation, CDN purge) treat it as a notification, not a source
// of truth.
type ImageEvent struct {
	Type       EventType `json:"type"`
	ProductID  int64     `json:"product_id,omitempty"`
	ImageIndex int       `json:"image_index,omitempty"`
	SiteType   string    `json:"site_type,omitempty"`
	URLs       []string  `json:"urls,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
