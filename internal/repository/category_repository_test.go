package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
)

func newTestCategory(t *testing.T, repo CategoryRepository) *domain.Category {
	t.Helper()

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      "Category " + uuid.New().String(),
		Icon:      "icon-shoe",
		Color:     "#ff0000",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM products WHERE category_id = $1", category.ID)
		_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)
	})
	return category
}

func TestCategoryFindByID(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	category := newTestCategory(t, repo)

	found, err := repo.FindByID(context.Background(), category.ID)
	if err != nil {
		t.Fatalf("Failed to find category: %v", err)
	}
	if found.Name != category.Name || found.Icon != category.Icon || found.Color != category.Color {
		t.Errorf("Category mismatch. Expected %+v, got %+v", category, found)
	}
}

func TestCategoryFindByIDNotFound(t *testing.T) {
	repo := NewCategoryRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	category := newTestCategory(t, repo)

	duplicate := &domain.Category{
		ID:        uuid.New(),
		Name:      category.Name,
		CreatedAt: time.Now().UTC(),
	}
	err := repo.Create(context.Background(), duplicate)
	if !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Fatalf("Expected ErrCategoryAlreadyExists, got %v", err)
	}
}

func TestCategoryListContainsCreated(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	category := newTestCategory(t, repo)

	categories, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}

	for _, c := range categories {
		if c.ID == category.ID {
			return
		}
	}
	t.Errorf("Created category %s missing from list", category.ID)
}

func TestCategoryCreateFillsIdentityAndTimestamp(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	category := &domain.Category{Name: "Category " + uuid.New().String()}

	if err := repo.Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)
	})

	if category.ID == uuid.Nil {
		t.Error("Expected an ID to be assigned")
	}
	if category.CreatedAt.IsZero() || time.Since(category.CreatedAt) > time.Minute {
		t.Errorf("Expected a fresh created_at, got %v", category.CreatedAt)
	}
}
