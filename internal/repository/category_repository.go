package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type CategoryRepository struct {
	db base.DBTX
}

func NewCategoryRepository(db base.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create создаёт категорию
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, category.Name, category.Description).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetByID получает категорию по ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	query := `SELECT id, name, description, created_at FROM categories WHERE id = $1`

	var category model.Category
	err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return &category, nil
}
