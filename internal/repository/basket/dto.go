package basket

import (
	"fmt"
	"strconv"

	dombasket "github.com/rahelarnold98/xreco-nmr/internal/domain/basket"
)

const (
	fieldID   = "basketId"
	fieldName = "name"
)

func (r *Repo) seqKey() string   { return r.prefix + "baskets:seq" }
func (r *Repo) namesKey() string { return r.prefix + "baskets:names" }

func (r *Repo) basketKey(id int64) string {
	return r.prefix + "baskets:" + strconv.FormatInt(id, 10)
}

func (r *Repo) elementsKey(id int64) string {
	return r.basketKey(id) + ":elements"
}

func basketToHash(b dombasket.Basket) map[string]string {
	return map[string]string{
		fieldID:   strconv.FormatInt(b.ID(), 10),
		fieldName: b.Name(),
	}
}

func basketFromHash(id int64, m map[string]string) (dombasket.Basket, error) {
	if raw, ok := m[fieldID]; ok && raw != strconv.FormatInt(id, 10) {
		return dombasket.Basket{}, fmt.Errorf("record id %q does not match key %d", raw, id)
	}
	return dombasket.New(id, m[fieldName])
}
