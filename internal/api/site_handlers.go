package api

import (
	"net/http"

	"github.com/example/apparel-storefront/internal/domain/siteinfo"
)

func (h *Handlers) GetSiteInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.site.Current())
}

func (h *Handlers) UpdateSiteInfo(w http.ResponseWriter, r *http.Request) {
	var patch siteinfo.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	info, err := h.site.Update(r.Context(), patch)
	if err != nil {
		respondServiceError(w, r, "update site info", err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handlers) UploadCarouselImages(w http.ResponseWriter, r *http.Request) {
	files, err := readFiles(r)
	if err != nil {
		respondJSONError(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}

	info, err := h.gallery.AppendCarouselImages(r.Context(), files)
	if err != nil {
		respondServiceError(w, r, "upload carousel images", err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// ListImages lists stored images, optionally narrowed by a name prefix.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	objects, err := h.uploader.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		respondServiceError(w, r, "list images", err)
		return
	}
	respondJSON(w, http.StatusOK, objects)
}
