package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/apparel-storefront/internal/domain/cart"
	"github.com/example/apparel-storefront/internal/domain/catalog"
	"github.com/example/apparel-storefront/internal/domain/siteinfo"
	"github.com/example/apparel-storefront/internal/media"
)

const (
	DeviceHeader     = "X-Device-ID"
	DeviceCookieName = "device_id"

	maxUploadBytes = 32 << 20
)

// Handlers serves the storefront and admin endpoints.
type Handlers struct {
	catalog  *catalog.Service
	site     *siteinfo.Synchronizer
	carts    *cart.Registry
	gallery  *media.Gallery
	uploader *media.Uploader
}

func NewHandlers(
	products *catalog.Service,
	site *siteinfo.Synchronizer,
	carts *cart.Registry,
	gallery *media.Gallery,
	uploader *media.Uploader,
) *Handlers {
	return &Handlers{
		catalog:  products,
		site:     site,
		carts:    carts,
		gallery:  gallery,
		uploader: uploader,
	}
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// deviceID identifies the browser whose cart is addressed. A device without
// an id gets a new one in a long-lived cookie.
func deviceID(w http.ResponseWriter, r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(DeviceHeader)); id != "" {
		return id
	}
	if cookie, err := r.Cookie(DeviceCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// readFiles collects the "files" parts of a multipart upload.
func readFiles(r *http.Request) ([]media.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	headers := r.MultipartForm.File["files"]
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
