package domain

import "time"

// Archetype is a product template naming the attributes and options its
// products carry, both by code.
type Archetype struct {
	ID         string    `json:"id,omitempty" yaml:"-"`
	Name       string    `json:"name" yaml:"name" validate:"required,max=255"`
	Code       string    `json:"code" yaml:"code" validate:"required,max=255"`
	Attributes []string  `json:"attributes" yaml:"attributes"`
	Options    []string  `json:"options" yaml:"options"`
	CreatedAt  time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" yaml:"-"`
}
