package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/despesas-be/internal/models"
)

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id string) (models.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoryService manages the shared category list. Categories are global,
// not owned by any account.
type CategoryService struct {
	db *sql.DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CreateCategory validates the name and stores a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	category, err := models.NewCategory(name)
	if err != nil {
		return models.Category{}, err
	}
	category.ID = uuid.New().String()

	_, err = s.db.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES (?, ?)", category.ID, category.Name)
	if err != nil {
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

// GetAllCategories returns every category in creation order.
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID retrieves a single category.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
		}
		return models.Category{}, err
	}
	return c, nil
}

// UpdateCategory renames a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id, name string) (models.Category, error) {
	category, err := models.NewCategory(name)
	if err != nil {
		return models.Category{}, err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", category.Name, id)
	if err != nil {
		return models.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Category{}, err
	} else if n == 0 {
		return models.Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}

	category.ID = id
	return category, nil
}

// DeleteCategory removes a category. The foreign key from expenses makes the
// storage engine refuse the delete while any expense still references it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}
