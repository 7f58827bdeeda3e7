package domain

import "time"

// Taxon is a node in the catalog taxonomy. Parent refers to another taxon
// by code; nil marks a root.
type Taxon struct {
	ID        string    `json:"id,omitempty" yaml:"-"`
	Name      string    `json:"name" yaml:"name" validate:"required,max=255"`
	Code      string    `json:"code" yaml:"code" validate:"required,max=255"`
	Slug      string    `json:"slug,omitempty" yaml:"slug"`
	Parent    *string   `json:"parent,omitempty" yaml:"parent"`
	Position  int       `json:"position" yaml:"-"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// IsRoot reports whether the taxon has no parent.
func (t Taxon) IsRoot() bool {
	return t.Parent == nil || *t.Parent == ""
}
