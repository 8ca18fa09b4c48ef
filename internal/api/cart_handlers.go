package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/example/apparel-storefront/internal/api/middleware"
	"github.com/example/apparel-storefront/internal/checkout"
	"github.com/example/apparel-storefront/internal/domain/cart"
	"github.com/example/apparel-storefront/internal/domain/catalog"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (req cartItemRequest) key() cart.Key {
	return cart.Key{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
}

type cartLine struct {
	Product   catalog.Product `json:"product"`
	Size      string          `json:"size"`
	SizeName  string          `json:"sizeName"`
	Color     string          `json:"color"`
	ColorName string          `json:"colorName,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Items      []cartLine      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func toCartResponse(s *cart.Store) cartResponse {
	items := s.Items()
	resp := cartResponse{
		Items:      make([]cartLine, 0, len(items)),
		TotalItems: s.TotalItems(),
		TotalPrice: cart.Total(items),
	}
	for _, li := range items {
		line := cartLine{
			Product:  li.Product,
			Size:     li.Size,
			SizeName: li.SizeName(),
			Color:    li.Color,
			Quantity: li.Quantity,
			Subtotal: li.Subtotal(),
		}
		if li.Color != "" {
			line.ColorName = li.ColorName()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

func (h *Handlers) openCart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	s, err := h.carts.Open(r.Context(), deviceID(w, r))
	if err != nil {
		respondServiceError(w, r, "open cart", err)
		return nil, false
	}
	return s, true
}

// peekCart reads the cart without keeping it in memory.
func (h *Handlers) peekCart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	s, err := h.carts.Peek(r.Context(), deviceID(w, r))
	if err != nil {
		respondServiceError(w, r, "read cart", err)
		return nil, false
	}
	return s, true
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.peekCart(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

// AddToCart snapshots the current product and adds one unit of the variant.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondServiceError(w, r, "add to cart", cart.ErrInvalidProduct)
		return
	}
	p, err := h.catalog.Get(req.ProductID)
	if err != nil {
		respondServiceError(w, r, "add to cart", err)
		return
	}

	s, ok := h.openCart(w, r)
	if !ok {
		return
	}
	if _, err := s.Add(r.Context(), p, req.Size, req.Color); err != nil {
		respondServiceError(w, r, "add to cart", err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, ok := h.openCart(w, r)
	if !ok {
		return
	}
	if err := s.UpdateQuantity(r.Context(), req.key(), req.Quantity); err != nil {
		respondServiceError(w, r, "update cart item", err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, ok := h.openCart(w, r)
	if !ok {
		return
	}
	s.Remove(r.Context(), req.key())
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openCart(w, r)
	if !ok {
		return
	}
	s.Clear(r.Context())
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

// Checkout returns the WhatsApp link carrying the cart. The cart is kept;
// nothing is known about whether the message is sent.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.peekCart(w, r)
	if !ok {
		return
	}
	link, err := checkout.CartLink(h.site.Current().WhatsAppNumber, s.Items())
	if err != nil {
		respondServiceError(w, r, "checkout", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (h *Handlers) Inquiry(w http.ResponseWriter, r *http.Request) {
	link, err := checkout.InquiryLink(h.site.Current().WhatsAppNumber)
	if err != nil {
		respondServiceError(w, r, "inquiry", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": link})
}

// SaveCart copies the device cart to the signed-in account.
func (h *Handlers) SaveCart(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if err := h.carts.SaveForUser(r.Context(), deviceID(w, r), email); err != nil {
		respondServiceError(w, r, "save cart", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart saved"})
}

// RestoreCart replaces the device cart with the account's saved cart.
func (h *Handlers) RestoreCart(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	s, err := h.carts.RestoreForUser(r.Context(), deviceID(w, r), email)
	if err != nil {
		respondServiceError(w, r, "restore cart", err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(s))
}
