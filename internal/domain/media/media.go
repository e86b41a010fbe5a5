// Package media describes the media resources the retrieval backend serves.
package media

import (
	"fmt"
	"strconv"
)

// Type is the kind of a media resource. Stored as its ordinal.
type Type int

// Media types in storage order.
const (
	Video Type = iota
	Image
	Audio
	Model3D
	Unknown
)

var typeNames = [...]string{"VIDEO", "IMAGE", "AUDIO", "MODEL3D", "UNKNOWN"}

// String returns the upper-case type name.
func (t Type) String() string {
	if t < Video || t > Unknown {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseOrdinal decodes a stored type ordinal.
func ParseOrdinal(s string) (Type, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return Unknown, fmt.Errorf("media type %q: %w", s, err)
	}
	if n < int(Video) || n > int(Unknown) {
		return Unknown, fmt.Errorf("media type ordinal %d out of range", n)
	}
	return Type(n), nil
}

// Resource is a media resource record. Read-only for this service.
type Resource struct {
	id          string
	mediaType   Type
	title       string
	description string
	uri         string
	path        string
}

// New validates and creates a Resource.
func New(id string, mediaType Type, title, description, uri, path string) (Resource, error) {
	if id == "" {
		return Resource{}, fmt.Errorf("media resource id is required")
	}
	return Resource{
		id: id, mediaType: mediaType,
		title: title, description: description,
		uri: uri, path: path,
	}, nil
}

// ID returns the media resource identifier.
func (r *Resource) ID() string { return r.id }

// Type returns the media type.
func (r *Resource) Type() Type { return r.mediaType }

// Title returns the optional title.
func (r *Resource) Title() string { return r.title }

// Description returns the optional description.
func (r *Resource) Description() string { return r.description }

// URI returns the canonical resource URI.
func (r *Resource) URI() string { return r.uri }

// Path returns the location relative to the asset root.
func (r *Resource) Path() string { return r.path }
