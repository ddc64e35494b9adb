package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// CategoriesHandler exposes the read-only category surface. Category
// management lives in the external configuration store.
type CategoriesHandler struct {
	categories repository.CategoryRepository
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories repository.CategoryRepository) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// ListCategories GET /categories.
func (h *CategoriesHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCategory GET /categories/:id.
func (h *CategoriesHandler) GetCategory(c *fiber.Ctx) error {
	category, err := h.categories.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("category", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	fields := make([]dto.CustomFieldResponse, 0, len(category.CustomFields))
	for _, field := range category.CustomFields {
		fields = append(fields, dto.CustomFieldResponse{
			ID:       field.ID,
			Label:    field.Label,
			Type:     field.Type,
			Required: field.Required,
		})
	}
	return dto.CategoryResponse{
		ID:                    category.ID,
		Name:                  category.Name,
		SLAFirstResponseHours: category.SLAFirstResponseHours,
		SLAResolutionHours:    category.SLAResolutionHours,
		CustomFields:          fields,
	}
}
