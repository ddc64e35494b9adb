package dto

import "github.com/spec-kit/servicedesk/internal/domain"

// CategoryResponse describes a category with its field definitions.
type CategoryResponse struct {
	ID                    string                `json:"id"`
	Name                  string                `json:"name"`
	SLAFirstResponseHours int                   `json:"sla_first_response_hours"`
	SLAResolutionHours    int                   `json:"sla_resolution_hours"`
	CustomFields          []CustomFieldResponse `json:"custom_fields"`
}

// CustomFieldResponse describes a field definition.
type CustomFieldResponse struct {
	ID       string                 `json:"id"`
	Label    string                 `json:"label"`
	Type     domain.CustomFieldType `json:"type"`
	Required bool                   `json:"required"`
}
