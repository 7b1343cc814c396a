package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
)

type WishlistHandler struct {
	WishlistService *service.WishlistService
}

// HandleAdd puts a product on the caller's wishlist.
//
//	@Summary		Add to wishlist
//	@Description	Requires the add_wishlist capability. Adding a product already on the list returns the existing entry with 200.
//	@Tags			Wishlist
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		shopsdk.AddToWishlistRequest	true	"Product"
//	@Success		201		{object}	shopsdk.WishlistEntry	"Added"
//	@Success		200		{object}	shopsdk.WishlistEntry	"Already present"
//	@Failure		400		{object}	shopsdk.APIError		"product_id missing or malformed"
//	@Failure		403		{object}	shopsdk.APIError		"Missing add_wishlist"
//	@Failure		404		{object}	shopsdk.APIError		"Unknown product"
//	@Router			/add-to-wishlist/ [post].
func (h *WishlistHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req shopsdk.AddToWishlistRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		shopsdk.ErrBadRequest.WriteError(w)
		return
	}

	item, created, err := h.WishlistService.Add(r.Context(), httpx.UserIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, toWishlistEntry(item))
}

// HandleList returns the caller's wishlist.
//
//	@Summary		List wishlist
//	@Description	Requires the view_wishlist capability.
//	@Tags			Wishlist
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		shopsdk.WishlistEntry
//	@Failure		403	{object}	shopsdk.APIError	"Missing view_wishlist"
//	@Router			/wishlist/ [get].
func (h *WishlistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.WishlistService.List(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]shopsdk.WishlistEntry, 0, len(items))
	for _, it := range items {
		out = append(out, toWishlistEntry(it))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toWishlistEntry(it service.WishlistItem) shopsdk.WishlistEntry {
	return shopsdk.WishlistEntry{
		ID:      it.Entry.ID.String(),
		User:    it.Entry.AccountID,
		Product: toProduct(it.Product),
	}
}
