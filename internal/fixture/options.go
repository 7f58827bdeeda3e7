package fixture

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/utafrali/catalog-fixtures/pkg/config"
)

// Options is the raw option mapping of one fixture entry. It is kept as a
// YAML node until the fixture decodes it into its own typed struct.
type Options struct {
	node *yaml.Node
}

// NewOptions builds Options from a Go map, e.g. from CLI flags.
func NewOptions(m map[string]any) (Options, error) {
	if len(m) == 0 {
		return Options{}, nil
	}
	var node yaml.Node
	if err := node.Encode(m); err != nil {
		return Options{}, fmt.Errorf("encode options: %w", err)
	}
	return Options{node: &node}, nil
}

// MustOptions is NewOptions for literal maps that are known to encode.
func MustOptions(m map[string]any) Options {
	opts, err := NewOptions(m)
	if err != nil {
		panic(err)
	}
	return opts
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		o.node = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: options must be a mapping", value.Line)
	}
	o.node = value
	return nil
}

// IsZero reports whether no options were given.
func (o Options) IsZero() bool {
	return o.node == nil || len(o.node.Content) == 0
}

// Decode strictly decodes the options into out: keys without a matching
// field and values of the wrong type are errors. Absent options decode as an
// empty mapping so that required fields are left unset.
func (o Options) Decode(out any) error {
	data := []byte("{}")
	if o.node != nil {
		var err error
		if data, err = yaml.Marshal(o.node); err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
	}
	return config.DecodeYAML(data, out)
}

// Int is an integer option. yaml.v3 converts floats, exponents and hex
// literals into int fields; Int only accepts plain decimal integers.
type Int int

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Int) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!int" {
		return fmt.Errorf("line %d: %q is not an integer", value.Line, value.Value)
	}
	n, err := strconv.Atoi(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a decimal integer", value.Line, value.Value)
	}
	*i = Int(n)
	return nil
}
