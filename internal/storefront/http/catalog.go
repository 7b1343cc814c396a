package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
)

type CatalogHandler struct {
	CatalogService *service.CatalogService
}

// HandleListProducts lists products, optionally filtered by category.
//
//	@Summary		List products
//	@Description	Requires the view_product capability.
//	@Tags			Catalog
//	@Security		BearerAuth
//	@Produce		json
//	@Param			category	query		string	false	"Category id"
//	@Success		200			{array}		shopsdk.Product
//	@Failure		400			{object}	shopsdk.APIError	"Malformed category"
//	@Failure		401			{object}	shopsdk.APIError	"Invalid access token"
//	@Failure		403			{object}	shopsdk.APIError	"Missing view_product"
//	@Router			/products/ [get].
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.CatalogService.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]shopsdk.Product, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGetProduct returns one product with stock, images and ratings.
//
//	@Summary		Get product
//	@Description	Requires the view_product capability.
//	@Tags			Catalog
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Product id"
//	@Success		200	{object}	shopsdk.Product
//	@Failure		401	{object}	shopsdk.APIError	"Invalid access token"
//	@Failure		403	{object}	shopsdk.APIError	"Missing view_product"
//	@Failure		404	{object}	shopsdk.APIError	"Unknown product"
//	@Router			/products/{id}/ [get].
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.CatalogService.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProduct(p))
}

// HandleListCategories lists every category.
//
//	@Summary		List categories
//	@Description	Requires the view_category capability.
//	@Tags			Catalog
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		shopsdk.Category
//	@Failure		401	{object}	shopsdk.APIError	"Invalid access token"
//	@Failure		403	{object}	shopsdk.APIError	"Missing view_category"
//	@Router			/categories/ [get].
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.CatalogService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]shopsdk.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, shopsdk.Category{
			ID:          c.ID.String(),
			Name:        c.Name,
			Description: c.Description,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toProduct(p domain.Product) shopsdk.Product {
	out := shopsdk.Product{
		ID:             p.ID.String(),
		Name:           p.Name,
		Subtitle:       p.Subtitle,
		Description:    p.Description,
		SellingPrice:   p.SellingPrice.String(),
		MaxRetailPrice: p.MaxRetailPrice.String(),
		Category:       p.CategoryID.String(),
		Images:         make([]shopsdk.Image, 0, len(p.Images)),
		Ratings:        make([]shopsdk.Rating, 0, len(p.Ratings)),
	}
	if p.Stock != nil {
		out.Stock = &shopsdk.Stock{Quantity: p.Stock.Quantity, Unit: p.Stock.Unit}
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, shopsdk.Image{URL: img.URL})
	}
	for _, rt := range p.Ratings {
		out.Ratings = append(out.Ratings, shopsdk.Rating{
			ID:     rt.ID.String(),
			Rating: rt.Rating,
			Review: rt.Review,
		})
	}
	return out
}
