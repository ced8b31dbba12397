package dto

type GalleryRequest struct {
	Filter string `validate:"omitempty,oneof=all used unused"`
	Page   int    `validate:"omitempty,gte=1"`
	Limit  int    `validate:"omitempty,gte=1,lte=100"`
}

type ProductsWithCountsRequest struct {
	SortBy        string `validate:"omitempty,oneof=name image_count"`
	SortDirection string `validate:"omitempty,oneof=asc desc"`
}

type SiteUploadRequest struct {
	Type string `validate:"required,oneof=hero logo"`
}
