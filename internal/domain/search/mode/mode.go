package mode

// Mode is how the descriptors of an entity are queried.
type Mode string

// Query mode constants.
const (
	// Text scores label descriptors with full-text relevance.
	Text Mode = "text"
	// Vector ranks feature descriptors by nearest-neighbour distance.
	Vector Mode = "vector"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Vector
}
