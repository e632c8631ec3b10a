package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/google/uuid"
)

// MaxGalleryImages is the most files a single gallery update accepts.
const MaxGalleryImages = 10

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidUpload   = errors.New("invalid upload")
	ErrNoFile          = fmt.Errorf("%w: no file uploaded", ErrInvalidUpload)
	ErrTooManyFiles    = fmt.Errorf("%w: at most %d gallery images are allowed", ErrInvalidUpload, MaxGalleryImages)
	ErrInvalidLimit    = errors.New("limit must not be negative")
)

// CreateProductInput carries the scalar fields of a new product.
type CreateProductInput struct {
	Name            string    `form:"name" validate:"required,max=255"`
	Description     string    `form:"description"`
	RichDescription string    `form:"richDescription"`
	Brand           string    `form:"brand" validate:"max=255"`
	Price           float64   `form:"price" validate:"gte=0"`
	Category        uuid.UUID `form:"category"`
	CountInStock    int       `form:"countInStock" validate:"gte=0,lte=255"`
	Rating          float64   `form:"rating" validate:"gte=0,lte=5"`
	NumReviews      int       `form:"numReviews" validate:"gte=0"`
	IsFeatured      bool      `form:"isFeatured"`
}

// UpdateProductInput replaces only the fields that are set. Category is
// always required and must resolve.
type UpdateProductInput struct {
	Name            *string   `form:"name" validate:"omitempty,min=1,max=255"`
	Description     *string   `form:"description"`
	RichDescription *string   `form:"richDescription"`
	Brand           *string   `form:"brand" validate:"omitempty,max=255"`
	Price           *float64  `form:"price" validate:"omitempty,gte=0"`
	Category        uuid.UUID `form:"category"`
	CountInStock    *int      `form:"countInStock" validate:"omitempty,gte=0,lte=255"`
	Rating          *float64  `form:"rating" validate:"omitempty,gte=0,lte=5"`
	NumReviews      *int      `form:"numReviews" validate:"omitempty,gte=0"`
	IsFeatured      *bool     `form:"isFeatured"`
}

// patch returns the partial write described by in. Unset fields stay nil so
// the stored values are kept.
func (in *UpdateProductInput) patch() *domain.ProductPatch {
	return &domain.ProductPatch{
		Name:            in.Name,
		Description:     in.Description,
		RichDescription: in.RichDescription,
		Brand:           in.Brand,
		Price:           in.Price,
		Category:        &domain.CategoryRef{ID: in.Category},
		CountInStock:    in.CountInStock,
		Rating:          in.Rating,
		NumReviews:      in.NumReviews,
		IsFeatured:      in.IsFeatured,
	}
}

// ProductService defines the catalog operations on products. assetBaseURL is
// the public URL prefix that stored file names are appended to.
type ProductService interface {
	List(ctx context.Context, categoryIDs []uuid.UUID) ([]*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput, image *domain.Upload, assetBaseURL string) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput, image *domain.Upload, assetBaseURL string) (*domain.Product, error)
	UpdateGallery(ctx context.Context, id uuid.UUID, images []domain.Upload, assetBaseURL string) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	ListFeatured(ctx context.Context, limit *int) ([]*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	assets       storage.Store
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	assets storage.Store,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		assets:       assets,
	}
}

// AssetURL joins the public asset prefix and a stored file name.
func AssetURL(assetBaseURL, fileName string) string {
	return strings.TrimSuffix(assetBaseURL, "/") + "/" + fileName
}

func (s *productService) List(ctx context.Context, categoryIDs []uuid.UUID) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, repository.ProductFilter{CategoryIDs: categoryIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create validates the image and category before anything is written, then
// stores the image and persists the product.
func (s *productService) Create(ctx context.Context, input CreateProductInput, image *domain.Upload, assetBaseURL string) (*domain.Product, error) {
	if image == nil {
		return nil, ErrNoFile
	}
	if err := checkUpload(*image); err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, input.Category); err != nil {
		return nil, err
	}

	imageURL, err := s.saveAsset(ctx, *image, assetBaseURL)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, &domain.ProductDraft{
		Name:            input.Name,
		Description:     input.Description,
		RichDescription: input.RichDescription,
		Image:           imageURL,
		Brand:           input.Brand,
		Price:           input.Price,
		Category:        domain.CategoryRef{ID: input.Category},
		CountInStock:    input.CountInStock,
		Rating:          input.Rating,
		NumReviews:      input.NumReviews,
		IsFeatured:      input.IsFeatured,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies the fields set in input to an existing product. Without a
// new image the current image URL is kept.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput, image *domain.Upload, assetBaseURL string) (*domain.Product, error) {
	if err := s.checkCategory(ctx, input.Category); err != nil {
		return nil, err
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if image != nil {
		if err := checkUpload(*image); err != nil {
			return nil, err
		}
	}

	patch := input.patch()

	if image != nil {
		imageURL, err := s.saveAsset(ctx, *image, assetBaseURL)
		if err != nil {
			return nil, err
		}
		patch.Image = &imageURL
	}

	product, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, err
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// UpdateGallery replaces the gallery with the given images, in order.
func (s *productService) UpdateGallery(ctx context.Context, id uuid.UUID, images []domain.Upload, assetBaseURL string) (*domain.Product, error) {
	if len(images) > MaxGalleryImages {
		return nil, ErrTooManyFiles
	}
	for _, image := range images {
		if err := checkUpload(image); err != nil {
			return nil, err
		}
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(images))
	for _, image := range images {
		url, err := s.saveAsset(ctx, image, assetBaseURL)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	product, err := s.productRepo.UpdateGallery(ctx, id, urls)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update gallery: %w", err)
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) Count(ctx context.Context) (int, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ListFeatured returns featured products. A nil limit means no cap and a
// limit of zero returns nothing.
func (s *productService) ListFeatured(ctx context.Context, limit *int) ([]*domain.Product, error) {
	if limit != nil && *limit < 0 {
		return nil, ErrInvalidLimit
	}

	products, err := s.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

func (s *productService) checkCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidCategory
	}

	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrInvalidCategory
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

func checkUpload(upload domain.Upload) error {
	if err := storage.Validate(upload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}
	return nil
}

func (s *productService) saveAsset(ctx context.Context, upload domain.Upload, assetBaseURL string) (string, error) {
	ref, err := s.assets.Save(ctx, upload)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidType) {
			return "", fmt.Errorf("%w: %w", ErrInvalidUpload, err)
		}
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return AssetURL(assetBaseURL, ref.FileName), nil
}
