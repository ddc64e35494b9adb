package repository

import (
	"context"

	"github.com/spec-kit/servicedesk/internal/domain"
)

type categoryRepository struct {
	q Querier
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(q Querier) CategoryRepository {
	return &categoryRepository{q: q}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, name, sla_first_response_hours, sla_resolution_hours, created_at
        FROM categories WHERE id=$1`
	var category domain.Category
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.SLAFirstResponseHours,
		&category.SLAResolutionHours,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}

	fields, err := r.fieldsByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	category.CustomFields = fields
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, name, sla_first_response_hours, sla_resolution_hours, created_at
        FROM categories ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.SLAFirstResponseHours,
			&category.SLAResolutionHours,
			&category.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		fields, err := r.fieldsByCategory(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].CustomFields = fields
	}
	return result, nil
}

func (r *categoryRepository) fieldsByCategory(ctx context.Context, categoryID string) ([]domain.CustomField, error) {
	const query = `
        SELECT id, category_id, label, type, is_required
        FROM custom_fields WHERE category_id=$1 ORDER BY position ASC`
	rows, err := r.q.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CustomField
	for rows.Next() {
		var field domain.CustomField
		if err := rows.Scan(&field.ID, &field.CategoryID, &field.Label, &field.Type, &field.Required); err != nil {
			return nil, err
		}
		result = append(result, field)
	}
	return result, rows.Err()
}
