package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CountResponse represents the product count response
type CountResponse struct {
	ProductCount int `json:"productCount"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	publicPath     string
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler. publicPath is the URL path
// stored assets are served under.
func NewProductHandler(productService service.ProductService, publicPath string, maxUploadBytes int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		publicPath:     publicPath,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes below apiPrefix. Reads are
// public; writes go through the protect middlewares.
func (h *ProductHandler) RegisterRoutes(r chi.Router, apiPrefix string, protect ...func(http.Handler) http.Handler) {
	r.Route(apiPrefix+"/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/get/count", h.Count)
		r.Get("/get/featured", h.ListFeatured)
		r.Get("/get/featured/{count}", h.ListFeatured)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(protect...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Put("/gallery-images/{id}", h.UpdateGallery)
		})
	})
}

// respondError maps a service error onto the HTTP error envelope.
func (h *ProductHandler) respondError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInvalidCategory):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category")
	case errors.Is(err, service.ErrInvalidUpload),
		errors.Is(err, service.ErrInvalidLimit):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Failed to "+action, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
		return
	}
	h.logger.Debug("Rejected product request", zap.String("action", action), zap.Error(err))
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

// categoryField parses the category form value. A missing or malformed value
// yields uuid.Nil, which the service rejects as an invalid category.
func categoryField(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(r.FormValue("category")))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// respondFormError reports a malformed multipart request.
func (h *ProductHandler) respondFormError(w http.ResponseWriter, err error) {
	h.logger.Debug("Product form rejected", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
}

// List handles listing products, optionally filtered by ?categories=id1,id2
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryIDs []uuid.UUID
	if raw := r.URL.Query().Get("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
				return
			}
			categoryIDs = append(categoryIDs, id)
		}
	}

	products, err := h.productService.List(r.Context(), categoryIDs)
	if err != nil {
		h.respondError(w, err, "list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetByID handles fetching a single product
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation from a multipart form with one image
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		h.respondFormError(w, err)
		return
	}

	image, err := singleUpload(r.MultipartForm, "image")
	if err != nil {
		h.respondFormError(w, err)
		return
	}
	if image == nil {
		h.respondError(w, service.ErrNoFile, "create product")
		return
	}

	var input service.CreateProductInput
	if err := decodeForm(r.MultipartForm, &input, "category"); err != nil {
		h.respondFormError(w, err)
		return
	}
	input.Category = categoryField(r)

	if err := middleware.ValidateRequest(&input); err != nil {
		h.respondFormError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), input, image, assetBaseURL(r, h.publicPath))
	if err != nil {
		h.respondError(w, err, "create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update handles partial product updates, optionally replacing the image
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		h.respondFormError(w, err)
		return
	}

	var input service.UpdateProductInput
	if err := decodeForm(r.MultipartForm, &input, "category"); err != nil {
		h.respondFormError(w, err)
		return
	}
	input.Category = categoryField(r)

	if err := middleware.ValidateRequest(&input); err != nil {
		h.respondFormError(w, err)
		return
	}

	image, err := singleUpload(r.MultipartForm, "image")
	if err != nil {
		h.respondFormError(w, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, input, image, assetBaseURL(r, h.publicPath))
	if err != nil {
		h.respondError(w, err, "update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// UpdateGallery handles replacing the gallery images of a product
func (h *ProductHandler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		h.respondFormError(w, err)
		return
	}

	images, err := multiUpload(r.MultipartForm, "images")
	if err != nil {
		h.respondFormError(w, err)
		return
	}

	product, err := h.productService.UpdateGallery(r.Context(), id, images, assetBaseURL(r, h.publicPath))
	if err != nil {
		h.respondError(w, err, "update product gallery")
		return
	}

	h.logger.Info("Product gallery updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("images", len(product.Images)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "the product is deleted"})
}

// Count handles returning the number of products
func (h *ProductHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.productService.Count(r.Context())
	if err != nil {
		h.respondError(w, err, "count products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{ProductCount: count})
}

// ListFeatured handles listing featured products. Without a count every
// featured product is returned.
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if raw := chi.URLParam(r, "count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		limit = &n
	}

	products, err := h.productService.ListFeatured(r.Context(), limit)
	if err != nil {
		h.respondError(w, err, "list featured products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}
