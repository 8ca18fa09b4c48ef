// Package checkout builds the WhatsApp links that hand a cart or a general
// inquiry over to the shop. Nothing is sent; the client opens the link.
package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/example/apparel-storefront/internal/domain/cart"
)

const baseURL = "https://wa.me/"

const (
	InquiryText   = "Hola, me gustaría obtener más información sobre sus productos."
	OrderGreeting = "Hola, me gustaría hacer el siguiente pedido:"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidPhone = errors.New("whatsapp number has no digits")
)

// NormalizePhone strips everything but digits, so "+57 300-000 0000"
// becomes "573000000000".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InquiryLink opens a chat with the generic inquiry message.
func InquiryLink(phone string) (string, error) {
	return link(phone, InquiryText)
}

// CartLink opens a chat with the full cart breakdown.
func CartLink(phone string, items []cart.LineItem) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	return link(phone, CartMessage(items))
}

// CartMessage renders one line per item followed by the grand total.
func CartMessage(items []cart.LineItem) string {
	var b strings.Builder
	b.WriteString(OrderGreeting)
	b.WriteString("\n\n")
	for _, li := range items {
		fmt.Fprintf(&b, "%d x %s - Talla: %s", li.Quantity, li.Product.Title, li.Size)
		if li.Color != "" {
			fmt.Fprintf(&b, " - Color: %s", li.ColorName())
		}
		fmt.Fprintf(&b, " - $%s\n", li.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s", cart.Total(items).StringFixed(2))
	return b.String()
}

func link(phone, text string) (string, error) {
	digits := NormalizePhone(phone)
	if digits == "" {
		return "", ErrInvalidPhone
	}
	return baseURL + digits + "?text=" + encodeText(text), nil
}

// encodeText escapes a query value with %20 for spaces; wa.me shows a literal
// "+" otherwise.
func encodeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
