package domain

import "time"

// Attribute storage types.
const (
	AttributeTypeText     = "text"
	AttributeTypeTextarea = "textarea"
	AttributeTypeInteger  = "integer"
	AttributeTypePercent  = "percent"
	AttributeTypeCheckbox = "checkbox"
	AttributeTypeDate     = "date"
	AttributeTypeDatetime = "datetime"
)

// Attribute is a product attribute definition.
type Attribute struct {
	ID        string    `json:"id,omitempty" yaml:"-"`
	Name      string    `json:"name" yaml:"name" validate:"required,max=255"`
	Code      string    `json:"code" yaml:"code" validate:"required,max=255"`
	Type      string    `json:"type" yaml:"type" validate:"required"`
	Position  int       `json:"position" yaml:"-"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// ValidAttributeTypes returns the set of supported attribute types.
func ValidAttributeTypes() []string {
	return []string{
		AttributeTypeText, AttributeTypeTextarea, AttributeTypeInteger, AttributeTypePercent,
		AttributeTypeCheckbox, AttributeTypeDate, AttributeTypeDatetime,
	}
}

// IsValidAttributeType checks whether t is a supported attribute type.
func IsValidAttributeType(t string) bool {
	for _, v := range ValidAttributeTypes() {
		if v == t {
			return true
		}
	}
	return false
}
