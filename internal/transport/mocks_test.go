package transport

import (
	"context"
	"slices"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockCategoryRepository struct {
	categories []*domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return slices.Clone(m.categories), nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type mockProductRepository struct {
	categories *mockCategoryRepository
	products   []*domain.Product
}

func (m *mockProductRepository) build(id uuid.UUID, draft *domain.ProductDraft, images []string) (*domain.Product, error) {
	category, err := m.categories.FindByID(context.Background(), draft.Category.ID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &domain.Product{
		ID:              id,
		Name:            draft.Name,
		Description:     draft.Description,
		RichDescription: draft.RichDescription,
		Image:           draft.Image,
		Images:          images,
		Brand:           draft.Brand,
		Price:           draft.Price,
		Category:        category.View(),
		CountInStock:    draft.CountInStock,
		Rating:          draft.Rating,
		NumReviews:      draft.NumReviews,
		IsFeatured:      draft.IsFeatured,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (m *mockProductRepository) find(id uuid.UUID) int {
	return slices.IndexFunc(m.products, func(p *domain.Product) bool { return p.ID == id })
}

func (m *mockProductRepository) Create(ctx context.Context, draft *domain.ProductDraft) (*domain.Product, error) {
	p, err := m.build(uuid.New(), draft, []string{})
	if err != nil {
		return nil, err
	}
	m.products = append(m.products, p)
	return p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	i := m.find(id)
	if i < 0 {
		return nil, repository.ErrProductNotFound
	}
	var category *domain.Category
	if patch.Category != nil {
		c, err := m.categories.FindByID(ctx, patch.Category.ID)
		if err != nil {
			return nil, err
		}
		category = c
	}
	m.products[i] = applyPatch(m.products[i], patch, category)
	return m.products[i], nil
}

// applyPatch copies the set fields of patch onto a copy of p.
func applyPatch(p *domain.Product, patch *domain.ProductPatch, category *domain.Category) *domain.Product {
	out := *p
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.Name, patch.Name)
	set(&out.Description, patch.Description)
	set(&out.RichDescription, patch.RichDescription)
	set(&out.Image, patch.Image)
	set(&out.Brand, patch.Brand)
	if patch.Price != nil {
		out.Price = *patch.Price
	}
	if patch.CountInStock != nil {
		out.CountInStock = *patch.CountInStock
	}
	if patch.Rating != nil {
		out.Rating = *patch.Rating
	}
	if patch.NumReviews != nil {
		out.NumReviews = *patch.NumReviews
	}
	if patch.IsFeatured != nil {
		out.IsFeatured = *patch.IsFeatured
	}
	if category != nil {
		out.Category = category.View()
	}
	out.UpdatedAt = time.Now().UTC()
	return &out
}

func (m *mockProductRepository) UpdateGallery(ctx context.Context, id uuid.UUID, images []string) (*domain.Product, error) {
	i := m.find(id)
	if i < 0 {
		return nil, repository.ErrProductNotFound
	}
	p := *m.products[i]
	p.Images = slices.Clone(images)
	m.products[i] = &p
	return &p, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	i := m.find(id)
	if i < 0 {
		return repository.ErrProductNotFound
	}
	m.products = slices.Delete(m.products, i, i+1)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	i := m.find(id)
	if i < 0 {
		return nil, repository.ErrProductNotFound
	}
	return m.products[i], nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if len(filter.CategoryIDs) == 0 || slices.Contains(filter.CategoryIDs, p.Category.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

func (m *mockProductRepository) ListFeatured(ctx context.Context, limit *int) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		if limit != nil && len(out) >= *limit {
			break
		}
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out, nil
}
