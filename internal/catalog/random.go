package catalog

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// FakerRandom implements RandomProvider with gofakeit.
type FakerRandom struct {
	faker *gofakeit.Faker
}

// NewFakerRandom creates a FakerRandom. A zero seed picks a random seed.
func NewFakerRandom(seed uint64) *FakerRandom {
	return &FakerRandom{faker: gofakeit.New(seed)}
}

// Word returns a random lorem word.
func (r *FakerRandom) Word() string { return r.faker.Word() }

// UUID returns a random version 4 UUID.
func (r *FakerRandom) UUID() string { return uuid.New().String() }

// Element returns a uniformly chosen element of choices, or "" when empty.
func (r *FakerRandom) Element(choices []string) string {
	if len(choices) == 0 {
		return ""
	}
	return r.faker.RandomString(choices)
}

// IntBetween returns an integer in [min, max].
func (r *FakerRandom) IntBetween(min, max int) int {
	if min > max {
		min, max = max, min
	}
	return r.faker.IntRange(min, max)
}
