package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// productColumns selects a product joined with its category so every read
// returns the populated representation.
const productColumns = `
	p.id, p.name, p.description, p.rich_description, p.image, p.images,
	p.brand, p.price, p.count_in_stock, p.rating, p.num_reviews, p.is_featured,
	p.created_at, p.updated_at,
	c.id, c.name, c.icon, c.color
`

// ProductFilter narrows List. An empty CategoryIDs matches every product.
type ProductFilter struct {
	CategoryIDs []uuid.UUID
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, draft *domain.ProductDraft) (*domain.Product, error)
	// Update writes only the non-nil fields of patch.
	Update(ctx context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error)
	UpdateGallery(ctx context.Context, id uuid.UUID, images []string) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
	// ListFeatured returns featured products. A nil limit applies no cap;
	// a limit of zero or less yields no products.
	ListFeatured(ctx context.Context, limit *int) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.RichDescription,
		&product.Image,
		&images,
		&product.Brand,
		&product.Price,
		&product.CountInStock,
		&product.Rating,
		&product.NumReviews,
		&product.IsFeatured,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Category.ID,
		&product.Category.Name,
		&product.Category.Icon,
		&product.Category.Color,
	)
	if err != nil {
		return nil, err
	}

	product.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}

	return product, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode product images: %w", err)
	}
	return string(b), nil
}

// writeError maps constraint violations raised by a product write.
func writeError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if pgErrorCode(err) == pgForeignKeyViolation {
		return ErrCategoryNotFound
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}

// Create inserts a new product and returns it with its category populated
func (r *productRepository) Create(ctx context.Context, draft *domain.ProductDraft) (*domain.Product, error) {
	query := `
		WITH p AS (
			INSERT INTO products (
				id, name, description, rich_description, image, images, brand, price,
				category_id, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, $6, $7, $8, $9, $10, $11, $12, $13, $13)
			RETURNING *
		)
		SELECT ` + productColumns + `
		FROM p
		JOIN categories c ON c.id = p.category_id
	`

	row := r.db.QueryRowContext(
		ctx,
		query,
		uuid.New(),
		draft.Name,
		draft.Description,
		draft.RichDescription,
		draft.Image,
		draft.Brand,
		draft.Price,
		draft.Category.ID,
		draft.CountInStock,
		draft.Rating,
		draft.NumReviews,
		draft.IsFeatured,
		time.Now().UTC(),
	)

	product, err := scanProduct(row)
	if err != nil {
		return nil, writeError("create", err)
	}

	return product, nil
}

// nullable turns a nil pointer into SQL NULL so COALESCE keeps the column.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// Update applies a partial change in a single statement, so concurrent
// updates of different fields do not overwrite each other. The gallery is
// left alone.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	query := `
		WITH p AS (
			UPDATE products
			SET name = COALESCE($2, name),
			    description = COALESCE($3, description),
			    rich_description = COALESCE($4, rich_description),
			    image = COALESCE($5, image),
			    brand = COALESCE($6, brand),
			    price = COALESCE($7, price),
			    category_id = COALESCE($8, category_id),
			    count_in_stock = COALESCE($9, count_in_stock),
			    rating = COALESCE($10, rating),
			    num_reviews = COALESCE($11, num_reviews),
			    is_featured = COALESCE($12, is_featured),
			    updated_at = $13
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + productColumns + `
		FROM p
		JOIN categories c ON c.id = p.category_id
	`

	var categoryID any
	if patch.Category != nil {
		categoryID = patch.Category.ID
	}

	row := r.db.QueryRowContext(
		ctx,
		query,
		id,
		nullable(patch.Name),
		nullable(patch.Description),
		nullable(patch.RichDescription),
		nullable(patch.Image),
		nullable(patch.Brand),
		nullable(patch.Price),
		categoryID,
		nullable(patch.CountInStock),
		nullable(patch.Rating),
		nullable(patch.NumReviews),
		nullable(patch.IsFeatured),
		time.Now().UTC(),
	)

	product, err := scanProduct(row)
	if err != nil {
		return nil, writeError("update", err)
	}

	return product, nil
}

// UpdateGallery replaces the whole image gallery of a product
func (r *productRepository) UpdateGallery(ctx context.Context, id uuid.UUID, images []string) (*domain.Product, error) {
	encoded, err := encodeImages(images)
	if err != nil {
		return nil, err
	}

	query := `
		WITH p AS (
			UPDATE products
			SET images = $2::jsonb, updated_at = $3
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + productColumns + `
		FROM p
		JOIN categories c ON c.id = p.category_id
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id, encoded, time.Now().UTC()))
	if err != nil {
		return nil, writeError("update gallery of", err)
	}

	return product, nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID with its category populated
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products in insertion order, optionally restricted to a set of categories
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	whereClause := ""
	args := []interface{}{}

	if len(filter.CategoryIDs) > 0 {
		whereClause = "WHERE p.category_id = ANY($1::uuid[])"
		args = append(args, filter.CategoryIDs)
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		` + whereClause + `
		ORDER BY p.created_at ASC, p.id ASC
	`

	return r.queryProducts(ctx, "list", query, args...)
}

// Count returns the number of stored products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (r *productRepository) ListFeatured(ctx context.Context, limit *int) ([]*domain.Product, error) {
	if limit != nil && *limit <= 0 {
		return []*domain.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_featured
		ORDER BY p.created_at ASC, p.id ASC
	`
	args := []interface{}{}
	if limit != nil {
		query += " LIMIT $1"
		args = append(args, *limit)
	}

	return r.queryProducts(ctx, "list featured", query, args...)
}

func (r *productRepository) queryProducts(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s products: %w", op, err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
