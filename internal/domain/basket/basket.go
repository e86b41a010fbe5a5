// Package basket describes user-curated collections of media references.
package basket

import (
	"fmt"
	"unicode/utf8"
)

// MaxNameLength bounds basket names.
const MaxNameLength = 256

// Basket is a named collection of media resource references.
type Basket struct {
	id   int64
	name string
}

// ValidateName checks a basket name before it is registered.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("basket name is required")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("basket name must be valid UTF-8")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("basket name too long (max %d bytes)", MaxNameLength)
	}
	return nil
}

// New validates and creates a Basket.
func New(id int64, name string) (Basket, error) {
	if id <= 0 {
		return Basket{}, fmt.Errorf("basket id must be positive")
	}
	if err := ValidateName(name); err != nil {
		return Basket{}, err
	}
	return Basket{id: id, name: name}, nil
}

// ID returns the store-assigned identifier.
func (b *Basket) ID() int64 { return b.id }

// Name returns the unique basket name.
func (b *Basket) Name() string { return b.name }

// Preview is a basket together with its element count.
type Preview struct {
	Basket
	size int64
}

// NewPreview creates a Preview.
func NewPreview(b Basket, size int64) Preview {
	return Preview{Basket: b, size: size}
}

// Size returns the number of elements.
func (p *Preview) Size() int64 { return p.size }
