package image

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"floresya-images/internal/domain"
	"floresya-images/internal/http-server/handler/image/dto"
	repoimage "floresya-images/internal/repository/image"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

var logOnce sync.Once

func testLogger() *zlog.Zerolog {
	logOnce.Do(zlog.Init)
	return &zlog.Logger
}

type fakePipeline struct {
	uploadErr error
	deleteErr error

	lastProductID  int64
	lastImageIndex int
	lastIsPrimary  bool
	deleted        []int64
	siteType       domain.SiteImageType
}

func (f *fakePipeline) UploadProductImage(ctx context.Context, productID int64, imageIndex int, isPrimary bool, filename, mimeType string, data []byte) ([]domain.ImageRecord, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}

	f.lastProductID = productID
	f.lastImageIndex = imageIndex
	f.lastIsPrimary = isPrimary

	records := make([]domain.ImageRecord, 0, len(domain.ProductBuckets))
	for i, bucket := range domain.ProductBuckets {
		records = append(records, domain.ImageRecord{
			ID:          int64(i + 1),
			ProductID:   productID,
			ImageIndex:  imageIndex,
			Bucket:      bucket,
			URL:         "http://cdn.test/products/42/base_" + string(bucket) + ".webp",
			ContentHash: "deadbeef",
			MimeType:    domain.MimeWebP,
			IsPrimary:   isPrimary,
		})
	}
	return records, nil
}

func (f *fakePipeline) DeleteProductImages(ctx context.Context, productID int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, productID)
	return nil
}

func (f *fakePipeline) UploadSiteImage(ctx context.Context, typ domain.SiteImageType, filename, mimeType string, data []byte) (*domain.SiteImage, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.siteType = typ
	return &domain.SiteImage{Type: typ, URL: "http://cdn.test/site/x.webp"}, nil
}

type fakeGallery struct {
	page *domain.GalleryPage
}

func (f *fakeGallery) Page(ctx context.Context, filter string, page, limit int) (*domain.GalleryPage, error) {
	if f.page != nil {
		return f.page, nil
	}
	return &domain.GalleryPage{Entries: []domain.GalleryEntry{}, Page: 1, Limit: 20}, nil
}

func (f *fakeGallery) ProductsWithCounts(ctx context.Context, sortBy, direction string) ([]domain.ProductImageCount, error) {
	return []domain.ProductImageCount{{ProductID: 1, Name: "Roses", ImageCount: 2}}, nil
}

func (f *fakeGallery) SiteCurrent(ctx context.Context) (string, string, error) {
	return domain.DefaultHeroURL, domain.DefaultLogoURL, nil
}

func testRouter(p *fakePipeline, g *fakeGallery) http.Handler {
	h := NewImageHandler(p, g, testLogger())

	r := chi.NewRouter()
	r.Post("/api/products/{productID}/images", h.UploadProductImage)
	r.Delete("/api/products/{productID}/images", h.DeleteProductImages)
	r.Get("/api/images/gallery", h.Gallery)
	r.Get("/api/images/products-with-counts", h.ProductsWithCounts)
	r.Post("/api/images/site", h.UploadSiteImage)
	r.Get("/api/images/site/current", h.SiteCurrent)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}

	fw, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	if _, err := fw.Write(fileData); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, w.FormDataContentType()
}

func TestUploadProductImage(t *testing.T) {
	p := &fakePipeline{}
	r := testRouter(p, &fakeGallery{})

	body, contentType := multipartBody(t, map[string]string{
		"imageIndex": "3",
		"isPrimary":  "true",
	}, "image", "rose.jpg", []byte("fake image bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/products/42/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	if p.lastProductID != 42 || p.lastImageIndex != 3 || !p.lastIsPrimary {
		t.Errorf("pipeline got productID=%d index=%d primary=%v, want 42/3/true",
			p.lastProductID, p.lastImageIndex, p.lastIsPrimary)
	}

	var resp dto.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Records) != 4 {
		t.Errorf("records = %d, want 4", len(resp.Records))
	}

	// the medium derivative is the primary representative
	if resp.PrimaryURL == "" || resp.PrimaryURL != "http://cdn.test/products/42/base_medium.webp" {
		t.Errorf("primary_url = %q, want medium url", resp.PrimaryURL)
	}
}

func TestUploadProductImage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		imageIndex string
		uploadErr  error
		wantStatus int
	}{
		{name: "bad product id", url: "/api/products/abc/images", wantStatus: http.StatusBadRequest},
		{name: "negative index", url: "/api/products/1/images", imageIndex: "-2", wantStatus: http.StatusBadRequest},
		{name: "unknown product", url: "/api/products/99/images", uploadErr: repoimage.ErrProductNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{uploadErr: tt.uploadErr}
			r := testRouter(p, &fakeGallery{})

			fields := map[string]string{}
			if tt.imageIndex != "" {
				fields["imageIndex"] = tt.imageIndex
			}
			body, contentType := multipartBody(t, fields, "image", "x.jpg", []byte("data"))

			req := httptest.NewRequest(http.MethodPost, tt.url, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestUploadProductImage_MissingFile(t *testing.T) {
	r := testRouter(&fakePipeline{}, &fakeGallery{})

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	w.WriteField("isPrimary", "false")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/products/1/images", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteProductImages(t *testing.T) {
	p := &fakePipeline{}
	r := testRouter(p, &fakeGallery{})

	req := httptest.NewRequest(http.MethodDelete, "/api/products/42/images", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if len(p.deleted) != 1 || p.deleted[0] != 42 {
		t.Errorf("deleted = %v, want [42]", p.deleted)
	}
}

func TestGallery_ParamValidation(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK},
		{name: "valid", query: "?filter=used&page=2&limit=50", wantStatus: http.StatusOK},
		{name: "bad filter", query: "?filter=broken", wantStatus: http.StatusBadRequest},
		{name: "limit over max", query: "?limit=101", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRouter(&fakePipeline{}, &fakeGallery{})

			req := httptest.NewRequest(http.MethodGet, "/api/images/gallery"+tt.query, nil)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestGallery_EmptyPage(t *testing.T) {
	r := testRouter(&fakePipeline{}, &fakeGallery{})

	req := httptest.NewRequest(http.MethodGet, "/api/images/gallery", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	var resp dto.GalleryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Entries == nil {
		t.Error("entries should be an empty array, not null")
	}
}

func TestUploadSiteImage_TypeValidation(t *testing.T) {
	tests := []struct {
		name       string
		siteType   string
		wantStatus int
	}{
		{name: "hero accepted", siteType: "hero", wantStatus: http.StatusCreated},
		{name: "logo accepted", siteType: "logo", wantStatus: http.StatusCreated},
		{name: "banner rejected", siteType: "banner", wantStatus: http.StatusBadRequest},
		{name: "missing rejected", siteType: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{}
			r := testRouter(p, &fakeGallery{})

			fields := map[string]string{}
			if tt.siteType != "" {
				fields["type"] = tt.siteType
			}
			body, contentType := multipartBody(t, fields, "image", "banner.jpg", []byte("data"))

			req := httptest.NewRequest(http.MethodPost, "/api/images/site", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestSiteCurrent(t *testing.T) {
	r := testRouter(&fakePipeline{}, &fakeGallery{})

	req := httptest.NewRequest(http.MethodGet, "/api/images/site/current", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp dto.SiteCurrentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.HeroURL != domain.DefaultHeroURL || resp.LogoURL != domain.DefaultLogoURL {
		t.Errorf("got hero=%q logo=%q, want defaults", resp.HeroURL, resp.LogoURL)
	}
}

func TestProductsWithCounts(t *testing.T) {
	r := testRouter(&fakePipeline{}, &fakeGallery{})

	t.Run("valid sort", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/products-with-counts?sort_by=image_count&sort_direction=desc", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp []dto.ProductCountResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp) != 1 || resp[0].ImageCount != 2 {
			t.Errorf("resp = %+v, want one product with 2 images", resp)
		}
	})

	t.Run("bad sort column", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/images/products-with-counts?sort_by=price", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
