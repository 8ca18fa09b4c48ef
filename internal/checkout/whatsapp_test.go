package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/apparel-storefront/internal/domain/cart"
	"github.com/example/apparel-storefront/internal/domain/catalog"
)

func lineItem(title, price, size, color string, qty int) cart.LineItem {
	return cart.LineItem{
		Product: catalog.Product{
			ID:    strings.ToLower(title),
			Title: title,
			Price: decimal.RequireFromString(price),
			Sizes: catalog.DefaultSizes(),
			Colors: []catalog.Color{
				{ID: "azul-rey", Name: "Azul Rey", Hex: "#1f3fbf"},
			},
		},
		Size:     size,
		Color:    color,
		Quantity: qty,
	}
}

func decodeText(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("text")
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+57 300 000 0000", "573000000000"},
		{"(300) 123-4567", "3001234567"},
		{"573001234567", "573001234567"},
		{"sin número", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestInquiryLink(t *testing.T) {
	link, err := InquiryLink("+57 300 000 0000")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/573000000000?text="))
	assert.NotContains(t, link, "+")
	assert.Equal(t, InquiryText, decodeText(t, link))
}

func TestInquiryLink_InvalidPhone(t *testing.T) {
	_, err := InquiryLink("   ")

	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestCartLink(t *testing.T) {
	items := []cart.LineItem{
		lineItem("Camiseta", "25000", "M", "azul-rey", 2),
		lineItem("Buzo", "80000.5", "8", "", 1),
	}

	link, err := CartLink("+57 300 000 0000", items)
	require.NoError(t, err)

	text := decodeText(t, link)
	assert.Equal(t, "Hola, me gustaría hacer el siguiente pedido:\n\n"+
		"2 x Camiseta - Talla: M - Color: Azul Rey - $50000.00\n"+
		"1 x Buzo - Talla: 8 - $80000.50\n"+
		"\nTotal: $130000.50", text)
}

func TestCartLink_EmptyCart(t *testing.T) {
	_, err := CartLink("3000000000", nil)

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestEncodeText(t *testing.T) {
	assert.Equal(t, "1%20x%20A%2BB", encodeText("1 x A+B"))
}
