package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/apparel-storefront/internal/auth"
	"github.com/example/apparel-storefront/internal/checkout"
	"github.com/example/apparel-storefront/internal/domain/cart"
	"github.com/example/apparel-storefront/internal/domain/catalog"
	"github.com/example/apparel-storefront/internal/logging"
	"github.com/example/apparel-storefront/internal/media"
)

var badRequest = []error{
	catalog.ErrInvalidTitle,
	catalog.ErrInvalidPrice,
	catalog.ErrPricePrecision,
	catalog.ErrInvalidStock,
	catalog.ErrInvalidSize,
	catalog.ErrDuplicateSize,
	catalog.ErrSizesLocked,
	catalog.ErrInvalidColor,
	catalog.ErrDuplicateColor,
	cart.ErrInvalidProduct,
	cart.ErrNoVariants,
	cart.ErrSizeRequired,
	cart.ErrSizeUnavailable,
	cart.ErrColorRequired,
	cart.ErrUnknownColor,
	cart.ErrDeviceRequired,
	checkout.ErrEmptyCart,
	media.ErrNoFiles,
}

var notFound = []error{
	catalog.ErrProductNotFound,
	catalog.ErrColorNotFound,
	catalog.ErrSizeNotFound,
	cart.ErrItemNotFound,
	cart.ErrNoSavedCart,
}

// statusFor maps a service error to a status and the message shown to the
// client. Remote failures get a generic message.
func statusFor(err error) (int, string) {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound, target.Error()
		}
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, media.ErrUploadFailed):
		return http.StatusBadGateway, media.ErrUploadFailed.Error()
	case errors.Is(err, checkout.ErrInvalidPhone):
		// The shop's number comes from Site Info, not from the client.
		return http.StatusServiceUnavailable, checkout.ErrInvalidPhone.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func respondServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(msg, "error", err)
	}
	respondJSONError(w, message, status)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
