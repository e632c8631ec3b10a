package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/storage"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	err        error
}

func newMockCategoryRepository(categories ...*domain.Category) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if m.err != nil {
		return m.err
	}
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

type mockProductRepository struct {
	categories *mockCategoryRepository
	products   []*domain.Product
	writes     int
	lastPatch  *domain.ProductPatch
}

func newMockProductRepository(categories *mockCategoryRepository) *mockProductRepository {
	return &mockProductRepository{categories: categories}
}

func (m *mockProductRepository) populate(id uuid.UUID, draft *domain.ProductDraft, images []string, createdAt time.Time) (*domain.Product, error) {
	category, ok := m.categories.categories[draft.Category.ID]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
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
		CreatedAt:       createdAt,
		UpdatedAt:       time.Now().UTC(),
	}, nil
}

func (m *mockProductRepository) index(id uuid.UUID) int {
	return slices.IndexFunc(m.products, func(p *domain.Product) bool { return p.ID == id })
}

func (m *mockProductRepository) Create(ctx context.Context, draft *domain.ProductDraft) (*domain.Product, error) {
	p, err := m.populate(uuid.New(), draft, []string{}, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	m.writes++
	m.products = append(m.products, p)
	return p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	i := m.index(id)
	if i < 0 {
		return nil, repository.ErrProductNotFound
	}
	var category *domain.Category
	if patch.Category != nil {
		c, ok := m.categories.categories[patch.Category.ID]
		if !ok {
			return nil, repository.ErrCategoryNotFound
		}
		category = c
	}
	m.writes++
	m.lastPatch = patch
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
	i := m.index(id)
	if i < 0 {
		return nil, repository.ErrProductNotFound
	}
	m.writes++
	updated := *m.products[i]
	updated.Images = slices.Clone(images)
	m.products[i] = &updated
	return &updated, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	i := m.index(id)
	if i < 0 {
		return repository.ErrProductNotFound
	}
	m.writes++
	m.products = slices.Delete(m.products, i, i+1)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	i := m.index(id)
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

// mockStore records saved uploads and hands out sequential file names.
type mockStore struct {
	mu    sync.Mutex
	saved []domain.Upload
	err   error
}

func (s *mockStore) Save(ctx context.Context, upload domain.Upload) (domain.AssetRef, error) {
	if err := storage.Validate(upload); err != nil {
		return domain.AssetRef{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.AssetRef{}, s.err
	}
	s.saved = append(s.saved, upload)
	ext, _ := storage.ExtensionFor(upload.ContentType)
	return domain.AssetRef{FileName: fmt.Sprintf("file-%d.%s", len(s.saved), ext)}, nil
}

func (s *mockStore) ServeAsset(w http.ResponseWriter, r *http.Request, name string) {
	http.NotFound(w, r)
}

func (s *mockStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

var errBoom = errors.New("boom")
