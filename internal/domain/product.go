package domain

import "time"

// AttributeValue assigns a value to an attribute, referenced by code.
type AttributeValue struct {
	Attribute string `json:"attribute" yaml:"attribute" validate:"required"`
	Value     string `json:"value" yaml:"value"`
}

// Product is a catalog product. MainTaxon, Archetype and Taxons refer to
// other records by code.
type Product struct {
	ID         string           `json:"id,omitempty" yaml:"-"`
	Name       string           `json:"name" yaml:"name" validate:"required,max=255"`
	Code       string           `json:"code" yaml:"code" validate:"max=255"`
	Slug       string           `json:"slug,omitempty" yaml:"slug"`
	MainTaxon  string           `json:"main_taxon,omitempty" yaml:"main_taxon"`
	Archetype  string           `json:"archetype,omitempty" yaml:"archetype"`
	Taxons     []string         `json:"taxons,omitempty" yaml:"taxons"`
	Attributes []AttributeValue `json:"attributes,omitempty" yaml:"attributes" validate:"dive"`
	CreatedAt  time.Time        `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt  time.Time        `json:"updated_at,omitempty" yaml:"-"`
}

// HasTaxon reports whether code is among the product's taxons.
func (p Product) HasTaxon(code string) bool {
	for _, t := range p.Taxons {
		if t == code {
			return true
		}
	}
	return false
}

// AttributeValue returns the value assigned to attribute code, if any.
func (p Product) AttributeValue(code string) (string, bool) {
	for _, av := range p.Attributes {
		if av.Attribute == code {
			return av.Value, true
		}
	}
	return "", false
}
