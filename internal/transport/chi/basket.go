package chi

import (
	"fmt"
	"net/http"

	dombasket "github.com/rahelarnold98/xreco-nmr/internal/domain/basket"
)

// Basket is a basket with its element ids.
type Basket struct {
	BasketID int64    `json:"basketId"`
	Name     string   `json:"name,omitempty"`
	Elements []string `json:"elements"`
}

// BasketPreview is a basket with its element count.
type BasketPreview struct {
	BasketID int64  `json:"basketId"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
}

// BasketList is the response of the list routes.
type BasketList struct {
	Baskets []BasketPreview `json:"baskets"`
}

// createBasket handles POST /basket/{name}.
func (h *handlers) createBasket(w http.ResponseWriter, r *http.Request) {
	var name string
	if !h.pathParam(w, r, "name", &name) {
		return
	}
	b, err := h.s.baskets.Create(r.Context(), name)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Basket{BasketID: b.ID(), Name: b.Name(), Elements: []string{}})
}

// deleteBasket handles DELETE /basket/{id}.
func (h *handlers) deleteBasket(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !h.pathParam(w, r, "id", &id) {
		return
	}
	if err := h.s.baskets.Delete(r.Context(), id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Basket %d deleted", id))
}

// listBasketElements handles GET /basket/{id}.
func (h *handlers) listBasketElements(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !h.pathParam(w, r, "id", &id) {
		return
	}
	elems, err := h.s.baskets.ListElements(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if elems == nil {
		elems = []string{}
	}
	writeJSON(w, http.StatusOK, Basket{BasketID: id, Elements: elems})
}

// listBaskets handles GET /basket/list/all.
func (h *handlers) listBaskets(w http.ResponseWriter, r *http.Request) {
	all, err := h.s.baskets.ListAll(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, basketList(all))
}

// listBasketsByUser handles GET /basket/list/{userId}.
func (h *handlers) listBasketsByUser(w http.ResponseWriter, r *http.Request) {
	var user string
	if !h.pathParam(w, r, "userId", &user) {
		return
	}
	all, err := h.s.baskets.ListByUser(r.Context(), user)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, basketList(all))
}

// addBasketElement handles PUT /basket/{id}/{mediaResourceId}.
func (h *handlers) addBasketElement(w http.ResponseWriter, r *http.Request) {
	var (
		id         int64
		resourceID string
	)
	if !h.pathParam(w, r, "id", &id) || !h.pathParam(w, r, "mediaResourceId", &resourceID) {
		return
	}
	if err := h.s.baskets.AddElement(r.Context(), id, resourceID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Media resource %s added to basket %d", resourceID, id))
}

// dropBasketElement handles DELETE /basket/{id}/{mediaResourceId}.
func (h *handlers) dropBasketElement(w http.ResponseWriter, r *http.Request) {
	var (
		id         int64
		resourceID string
	)
	if !h.pathParam(w, r, "id", &id) || !h.pathParam(w, r, "mediaResourceId", &resourceID) {
		return
	}
	if err := h.s.baskets.DropElement(r.Context(), id, resourceID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Media resource %s removed from basket %d", resourceID, id))
}

func basketList(ps []dombasket.Preview) BasketList {
	out := BasketList{Baskets: make([]BasketPreview, len(ps))}
	for i := range ps {
		out.Baskets[i] = BasketPreview{BasketID: ps[i].ID(), Name: ps[i].Name(), Size: ps[i].Size()}
	}
	return out
}
