package basket

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	"github.com/rahelarnold98/xreco-nmr/internal/domain"
	dombasket "github.com/rahelarnold98/xreco-nmr/internal/domain/basket"
	"github.com/rahelarnold98/xreco-nmr/internal/repository/storeerr"
)

// listAllConcurrency bounds the SCARD fan-out of ListAll.
const listAllConcurrency = 8

// store is the consumer interface for baskets (ISP).
//
//nolint:interfacebloat // basket repo needs hash + set + counter + tx operations
type store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SAddIfExists(ctx context.Context, guardKey, setKey string, members ...string) (bool, error)
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)
	Begin() db.Tx
}

// Repo implements usecase/basket.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a basket repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create registers the name, then writes the basket hash.
// The name registry (HSETNX) rejects duplicates.
func (r *Repo) Create(ctx context.Context, name string) (dombasket.Basket, error) {
	if err := dombasket.ValidateName(name); err != nil {
		return dombasket.Basket{}, domain.BadRequest("%v", err)
	}
	id, err := r.store.IncrBy(ctx, r.seqKey(), 1)
	if err != nil {
		return dombasket.Basket{}, storeerr.Map("allocate basket id", err)
	}
	b, err := dombasket.New(id, name)
	if err != nil {
		return dombasket.Basket{}, domain.Internal("allocate basket id", err)
	}

	ok, err := r.store.HSetNX(ctx, r.namesKey(), name, strconv.FormatInt(id, 10))
	if err != nil {
		return dombasket.Basket{}, storeerr.Map("register basket "+name, err)
	}
	if !ok {
		return dombasket.Basket{}, domain.AlreadyExists("basket %q already exists", name)
	}

	if err := r.store.HSet(ctx, r.basketKey(id), basketToHash(b)); err != nil {
		// release the name so the caller can retry
		if cleanupErr := r.store.HDel(ctx, r.namesKey(), name); cleanupErr != nil {
			err = fmt.Errorf("%w (release name: %v)", err, cleanupErr)
		}
		return dombasket.Basket{}, storeerr.Map("create basket "+name, err)
	}
	return b, nil
}

// Get retrieves a basket by id.
func (r *Repo) Get(ctx context.Context, id int64) (dombasket.Basket, error) {
	m, err := r.store.HGetAll(ctx, r.basketKey(id))
	if err != nil {
		return dombasket.Basket{}, storeerr.Map(fmt.Sprintf("get basket %d", id), err)
	}
	if len(m) == 0 {
		return dombasket.Basket{}, domain.NotFound("basket %d not found", id)
	}
	b, err := basketFromHash(id, m)
	if err != nil {
		return dombasket.Basket{}, domain.Internal(fmt.Sprintf("decode basket %d", id), err)
	}
	return b, nil
}

// Delete removes the basket hash, its elements and its name in one MULTI/EXEC.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	b, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	tx := r.store.Begin()
	defer tx.Rollback()

	tx.Del(r.basketKey(id), r.elementsKey(id))
	tx.HDel(r.namesKey(), b.Name())
	if err := tx.Commit(ctx); err != nil {
		return storeerr.Map(fmt.Sprintf("delete basket %d", id), err)
	}
	return nil
}

// AddElement adds a media resource to an existing basket. Re-adding is a no-op.
// The existence check and the add are one store operation, so a concurrent
// Delete never leaves elements behind.
func (r *Repo) AddElement(ctx context.Context, id int64, resourceID string) error {
	ok, err := r.store.SAddIfExists(ctx, r.basketKey(id), r.elementsKey(id), resourceID)
	if err != nil {
		return storeerr.Map(fmt.Sprintf("add %s to basket %d", resourceID, id), err)
	}
	if !ok {
		return domain.NotFound("basket %d not found", id)
	}
	return nil
}

// DropElement removes a media resource. Missing members are not an error.
func (r *Repo) DropElement(ctx context.Context, id int64, resourceID string) error {
	if err := r.store.SRem(ctx, r.elementsKey(id), resourceID); err != nil {
		return storeerr.Map(fmt.Sprintf("drop %s from basket %d", resourceID, id), err)
	}
	return nil
}

// ListElements returns the media resource ids of a basket, unordered.
func (r *Repo) ListElements(ctx context.Context, id int64) ([]string, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return nil, err
	}
	members, err := r.store.SMembers(ctx, r.elementsKey(id))
	if err != nil {
		return nil, storeerr.Map(fmt.Sprintf("list basket %d", id), err)
	}
	if members == nil {
		members = []string{}
	}
	return members, nil
}

// ListAll returns every basket with its size, sorted by id.
// Sizes are read with one SCARD per basket.
func (r *Repo) ListAll(ctx context.Context) ([]dombasket.Preview, error) {
	names, err := r.store.HGetAll(ctx, r.namesKey())
	if err != nil {
		return nil, storeerr.Map("list baskets", err)
	}

	baskets := make([]dombasket.Basket, 0, len(names))
	for name, rawID := range names {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, domain.Internal("decode basket registry", fmt.Errorf("name %q: %w", name, err))
		}
		b, err := dombasket.New(id, name)
		if err != nil {
			return nil, domain.Internal("decode basket registry", err)
		}
		baskets = append(baskets, b)
	}
	sort.Slice(baskets, func(i, j int) bool { return baskets[i].ID() < baskets[j].ID() })

	sizes := make([]int64, len(baskets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listAllConcurrency)
	for i := range baskets {
		g.Go(func() error {
			n, err := r.store.SCard(gctx, r.elementsKey(baskets[i].ID()))
			if err != nil {
				return storeerr.Map(fmt.Sprintf("size of basket %d", baskets[i].ID()), err)
			}
			sizes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]dombasket.Preview, len(baskets))
	for i, b := range baskets {
		out[i] = dombasket.NewPreview(b, sizes[i])
	}
	return out, nil
}

func (r *Repo) mustExist(ctx context.Context, id int64) error {
	ok, err := r.store.Exists(ctx, r.basketKey(id))
	if err != nil {
		return storeerr.Map(fmt.Sprintf("check basket %d", id), err)
	}
	if !ok {
		return domain.NotFound("basket %d not found", id)
	}
	return nil
}
