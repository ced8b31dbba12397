package router

import (
	"net/http"

	"floresya-images/internal/http-server/handler/image"
	"floresya-images/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ImageHandler *image.ImageHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products/{productID}/images", func(r chi.Router) {
			r.Post("/", h.ImageHandler.UploadProductImage)
			r.Delete("/", h.ImageHandler.DeleteProductImages)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/gallery", h.ImageHandler.Gallery)
			r.Get("/products-with-counts", h.ImageHandler.ProductsWithCounts)
			r.Post("/site", h.ImageHandler.UploadSiteImage)
			r.Get("/site/current", h.ImageHandler.SiteCurrent)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
