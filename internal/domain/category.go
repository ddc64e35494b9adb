package domain

import "time"

// CustomFieldType enumerates supported field widgets.
type CustomFieldType string

const (
	FieldTypeText     CustomFieldType = "text"
	FieldTypeTextarea CustomFieldType = "textarea"
	FieldTypeSelect   CustomFieldType = "select"
)

// CustomField is a per-category field definition.
type CustomField struct {
	ID         string
	CategoryID string
	Label      string
	Type       CustomFieldType
	Required   bool
}

// Category is read-only configuration consumed at ticket-creation time. The
// category name is snapshotted onto the ticket so later renames do not
// retroactively change historical tickets.
type Category struct {
	ID                    string
	Name                  string
	SLAFirstResponseHours int
	SLAResolutionHours    int
	CustomFields          []CustomField
	CreatedAt             time.Time
}

// Field returns the field definition with the given id, if present.
func (c *Category) Field(id string) (CustomField, bool) {
	for _, f := range c.CustomFields {
		if f.ID == id {
			return f, true
		}
	}
	return CustomField{}, false
}
