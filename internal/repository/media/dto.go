package media

import (
	"fmt"

	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
)

// Hash field names.
const (
	fieldID          = "mediaResourceId"
	fieldType        = "type"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldURI         = "uri"
	fieldPath        = "path"
)

func resourceFromHash(id string, m map[string]string) (dommedia.Resource, error) {
	if stored, ok := m[fieldID]; ok && stored != id {
		return dommedia.Resource{}, fmt.Errorf("record id %q does not match key %q", stored, id)
	}
	t := dommedia.Unknown
	if raw, ok := m[fieldType]; ok {
		parsed, err := dommedia.ParseOrdinal(raw)
		if err != nil {
			return dommedia.Resource{}, err
		}
		t = parsed
	}
	return dommedia.New(id, t, m[fieldTitle], m[fieldDescription], m[fieldURI], m[fieldPath])
}
