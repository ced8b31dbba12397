package image

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"floresya-images/internal/domain"
	"floresya-images/internal/http-server/handler/image/dto"
	repoimage "floresya-images/internal/repository/image"
	"floresya-images/internal/usecase/gallery"
	"floresya-images/internal/usecase/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	maxMemory = 8 << 20

	// multipart framing overhead on top of the 5 MB file limit
	maxRequestBody = domain.MaxUploadSize + (1 << 20)
)

type ImageHandler struct {
	pipeline pipelineUsecase
	gallery  galleryUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewImageHandler(pipelineUC pipelineUsecase, galleryUC galleryUsecase, logger *zlog.Zerolog) *ImageHandler {
	return &ImageHandler{
		pipeline: pipelineUC,
		gallery:  galleryUC,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *ImageHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Field 'image' is required", nil)
		return
	}
	defer file.Close()

	imageIndex := 0
	if raw := r.FormValue("imageIndex"); raw != "" {
		imageIndex, err = strconv.Atoi(raw)
		if err != nil || imageIndex < 0 {
			h.respondError(w, http.StatusBadRequest, "imageIndex must be a non-negative integer", nil)
			return
		}
	}

	isPrimary := r.FormValue("isPrimary") == "true"

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read file")
		h.respondError(w, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	records, err := h.pipeline.UploadProductImage(
		ctx,
		productID,
		imageIndex,
		isPrimary,
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		h.handleUploadError(w, err, productID, header.Filename)
		return
	}

	response := dto.UploadResponse{
		ProductID:  productID,
		ImageIndex: imageIndex,
		Records:    toRecordResponses(records),
	}

	// the medium derivative stands in as the representative when the new
	// group was flagged primary
	if isPrimary {
		for _, rec := range records {
			if rec.Bucket == domain.BucketMedium {
				response.PrimaryURL = rec.URL
				break
			}
		}
	}

	h.logger.Info().
		Int64("product_id", productID).
		Int("image_index", imageIndex).
		Int("records", len(records)).
		Msg("Product image uploaded")

	h.respondJSON(w, http.StatusCreated, response)
}

func (h *ImageHandler) DeleteProductImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	if err := h.pipeline.DeleteProductImages(ctx, productID); err != nil {
		h.logger.Error().Err(err).Int64("product_id", productID).Msg("Failed to delete image set")
		h.respondError(w, http.StatusInternalServerError, "Failed to delete image set", err)
		return
	}

	h.logger.Info().Int64("product_id", productID).Msg("Image set deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.GalleryRequest{
		Filter: r.URL.Query().Get("filter"),
	}
	req.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	req.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid gallery parameters", err)
		return
	}

	page, err := h.gallery.Page(ctx, req.Filter, req.Page, req.Limit)
	if err != nil {
		h.handleGalleryError(w, err)
		return
	}

	response := dto.GalleryResponse{
		Entries:    make([]dto.GalleryEntryResponse, 0, len(page.Entries)),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
	for _, e := range page.Entries {
		response.Entries = append(response.Entries, dto.GalleryEntryResponse{
			ImageRecordResponse: toRecordResponse(e.ImageRecord),
			ProductName:         e.ProductName,
		})
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *ImageHandler) ProductsWithCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.ProductsWithCountsRequest{
		SortBy:        r.URL.Query().Get("sort_by"),
		SortDirection: r.URL.Query().Get("sort_direction"),
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sort parameters", err)
		return
	}

	counts, err := h.gallery.ProductsWithCounts(ctx, req.SortBy, req.SortDirection)
	if err != nil {
		h.handleGalleryError(w, err)
		return
	}

	response := make([]dto.ProductCountResponse, 0, len(counts))
	for _, c := range counts {
		response = append(response, dto.ProductCountResponse{
			ProductID:  c.ProductID,
			Name:       c.Name,
			ImageCount: c.ImageCount,
		})
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *ImageHandler) UploadSiteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	req := dto.SiteUploadRequest{Type: r.FormValue("type")}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "type must be 'hero' or 'logo'", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Field 'image' is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read file")
		h.respondError(w, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	img, err := h.pipeline.UploadSiteImage(
		ctx,
		domain.SiteImageType(req.Type),
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		h.handleUploadError(w, err, 0, header.Filename)
		return
	}

	h.logger.Info().Str("type", req.Type).Str("url", img.URL).Msg("Site image uploaded")

	h.respondJSON(w, http.StatusCreated, dto.SiteImageResponse{
		Type: string(img.Type),
		URL:  img.URL,
	})
}

func (h *ImageHandler) SiteCurrent(w http.ResponseWriter, r *http.Request) {
	heroURL, logoURL, err := h.gallery.SiteCurrent(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load site images")
		h.respondError(w, http.StatusInternalServerError, "Failed to load site images", err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.SiteCurrentResponse{
		HeroURL: heroURL,
		LogoURL: logoURL,
	})
}

func (h *ImageHandler) handleUploadError(w http.ResponseWriter, err error, productID int64, filename string) {
	switch {
	case errors.Is(err, pipeline.ErrFileTooLarge):
		h.logger.Warn().Str("filename", filename).Msg("File too large")
		h.respondError(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
	case errors.Is(err, pipeline.ErrInvalidMimeType),
		errors.Is(err, pipeline.ErrEmptyFile),
		errors.Is(err, pipeline.ErrDecodeFailed),
		errors.Is(err, pipeline.ErrNegativeImageIdx),
		errors.Is(err, pipeline.ErrUnknownSiteType):
		h.logger.Warn().Str("filename", filename).Err(err).Msg("Upload rejected")
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repoimage.ErrProductNotFound):
		h.logger.Info().Int64("product_id", productID).Msg("Product not found")
		h.respondError(w, http.StatusNotFound, "Product not found", nil)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Upload failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to process image", err)
	}
}

func (h *ImageHandler) handleGalleryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gallery.ErrInvalidFilter), errors.Is(err, gallery.ErrInvalidSort):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Msg("Gallery query failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to query gallery", err)
	}
}

func toRecordResponse(rec domain.ImageRecord) dto.ImageRecordResponse {
	return dto.ImageRecordResponse{
		ID:          rec.ID,
		ProductID:   rec.ProductID,
		ImageIndex:  rec.ImageIndex,
		SizeBucket:  string(rec.Bucket),
		URL:         rec.URL,
		ContentHash: rec.ContentHash,
		MimeType:    rec.MimeType,
		IsPrimary:   rec.IsPrimary,
		CreatedAt:   rec.CreatedAt,
	}
}

func toRecordResponses(records []domain.ImageRecord) []dto.ImageRecordResponse {
	out := make([]dto.ImageRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return out
}

func (h *ImageHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Interface("data", data).Msg("Failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *ImageHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil {
		response.Details = err.Error()
	}

	h.respondJSON(w, status, response)
}
