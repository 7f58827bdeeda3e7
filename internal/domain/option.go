package domain

import "time"

// OptionValue is one selectable value of an Option. Its position within
// Option.Values is its display order.
type OptionValue struct {
	Code  string `json:"code" yaml:"code" validate:"required,max=255"`
	Value string `json:"value" yaml:"value" validate:"required"`
}

// Option is a product option definition (e.g. size), whose values
// generate variants.
type Option struct {
	ID        string        `json:"id,omitempty" yaml:"-"`
	Name      string        `json:"name" yaml:"name" validate:"required,max=255"`
	Code      string        `json:"code" yaml:"code" validate:"required,max=255"`
	Values    []OptionValue `json:"values" yaml:"values" validate:"min=1,dive"`
	Position  int           `json:"position" yaml:"-"`
	CreatedAt time.Time     `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time     `json:"updated_at,omitempty" yaml:"-"`
}

// ValueCodes returns the value codes in order.
func (o Option) ValueCodes() []string {
	codes := make([]string, len(o.Values))
	for i, v := range o.Values {
		codes[i] = v.Code
	}
	return codes
}
