package media

import (
	"context"
	"fmt"

	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	dommedia "github.com/rahelarnold98/xreco-nmr/internal/domain/media"
	"github.com/rahelarnold98/xreco-nmr/internal/repository/storeerr"
)

// store is the consumer interface for media resources (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements the media resource lookups used by retrieval and resource.
type Repo struct {
	store  store
	prefix string
}

// New creates a media resource repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Get retrieves a media resource by id.
func (r *Repo) Get(ctx context.Context, id string) (dommedia.Resource, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return dommedia.Resource{}, storeerr.Map(fmt.Sprintf("get media resource %s", id), err)
	}
	if len(m) == 0 {
		return dommedia.Resource{}, domain.NotFound("media resource %q not found", id)
	}
	res, err := resourceFromHash(id, m)
	if err != nil {
		return dommedia.Resource{}, domain.Internal("decode media resource "+id, err)
	}
	return res, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "media_resources:" + id
}
