package api

import (
	"net/http"

	"github.com/example/apparel-storefront/internal/domain/catalog"
)

// productResponse is a product plus the variant projections the product
// page renders.
type productResponse struct {
	catalog.Product
	AvailableSizes []catalog.Size  `json:"availableSizes"`
	AdultSizes     []catalog.Size  `json:"adultSizes"`
	ChildSizes     []catalog.Size  `json:"childSizes"`
	ColorOptions   []catalog.Color `json:"colorOptions"`
	HasVariants    bool            `json:"hasVariants"`
}

func toProductResponse(p catalog.Product) productResponse {
	v := p.Variants()
	return productResponse{
		Product:        p,
		AvailableSizes: v.AvailableSizes(),
		AdultSizes:     v.AdultSizes(),
		ChildSizes:     v.ChildSizes(),
		ColorOptions:   v.ColorOptions(),
		HasVariants:    v.HasVariants(),
	}
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.List()
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, "get product", err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

// Admin

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var draft catalog.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}

	p, err := h.catalog.Add(r.Context(), draft)
	if err != nil {
		respondServiceError(w, r, "create product", err)
		return
	}
	respondJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	p, err := h.catalog.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondServiceError(w, r, "update product", err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Remove(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, "delete product", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *Handlers) ToggleSize(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.ToggleSize(r.Context(), r.PathValue("id"), r.PathValue("sizeID"))
	if err != nil {
		respondServiceError(w, r, "toggle size", err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handlers) AddColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Hex  string `json:"hex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.catalog.AddColor(r.Context(), r.PathValue("id"), req.Name, req.Hex)
	if err != nil {
		respondServiceError(w, r, "add color", err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handlers) RemoveColor(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.RemoveColor(r.Context(), r.PathValue("id"), r.PathValue("colorID"))
	if err != nil {
		respondServiceError(w, r, "remove color", err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handlers) UploadProductImages(w http.ResponseWriter, r *http.Request) {
	files, err := readFiles(r)
	if err != nil {
		respondJSONError(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}

	p, err := h.gallery.AppendProductImages(r.Context(), r.PathValue("id"), files)
	if err != nil {
		respondServiceError(w, r, "upload product images", err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

// Revalidate reloads the catalog and the site copy from the remote store.
func (h *Handlers) Revalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Revalidate(r.Context()); err != nil {
		respondServiceError(w, r, "revalidate catalog", err)
		return
	}
	if err := h.site.Reload(r.Context()); err != nil {
		respondServiceError(w, r, "reload site info", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":  "Revalidated",
		"products": len(h.catalog.List()),
	})
}
