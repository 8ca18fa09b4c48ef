package api

import (
	"log/slog"
	"net/http"

	"github.com/example/apparel-storefront/internal/api/middleware"
	"github.com/example/apparel-storefront/internal/auth"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, sessions middleware.SessionValidator, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	signedIn := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(sessions)(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(sessions)(middleware.RequireRole(auth.RoleAdmin)(fn))
	}

	mux.HandleFunc("GET /ping", handlers.Ping)

	// Catalog
	mux.HandleFunc("GET /api/products", handlers.GetProducts)
	mux.HandleFunc("GET /api/products/{id}", handlers.GetProduct)
	mux.HandleFunc("GET /api/site-info", handlers.GetSiteInfo)

	// Cart
	mux.HandleFunc("GET /api/cart", handlers.GetCart)
	mux.HandleFunc("DELETE /api/cart", handlers.ClearCart)
	mux.HandleFunc("POST /api/cart/items", handlers.AddToCart)
	mux.HandleFunc("PATCH /api/cart/items", handlers.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items", handlers.RemoveFromCart)
	mux.HandleFunc("POST /api/cart/checkout", handlers.Checkout)
	mux.HandleFunc("GET /api/inquiry", handlers.Inquiry)
	mux.Handle("POST /api/cart/save", signedIn(handlers.SaveCart))
	mux.Handle("POST /api/cart/restore", signedIn(handlers.RestoreCart))

	// Auth
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.Handle("POST /api/auth/logout", middleware.OptionalAuthMiddleware(sessions)(http.HandlerFunc(authHandlers.Logout)))
	mux.Handle("GET /api/auth/session", signedIn(authHandlers.Session))

	// Admin
	mux.Handle("POST /api/admin/products", admin(handlers.CreateProduct))
	mux.Handle("PATCH /api/admin/products/{id}", admin(handlers.UpdateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(handlers.DeleteProduct))
	mux.Handle("POST /api/admin/products/{id}/sizes/{sizeID}/toggle", admin(handlers.ToggleSize))
	mux.Handle("POST /api/admin/products/{id}/colors", admin(handlers.AddColor))
	mux.Handle("DELETE /api/admin/products/{id}/colors/{colorID}", admin(handlers.RemoveColor))
	mux.Handle("POST /api/admin/products/{id}/images", admin(handlers.UploadProductImages))
	mux.Handle("POST /api/admin/revalidate", admin(handlers.Revalidate))
	mux.Handle("PATCH /api/admin/site-info", admin(handlers.UpdateSiteInfo))
	mux.Handle("POST /api/admin/site-info/carousel", admin(handlers.UploadCarouselImages))
	mux.Handle("GET /api/admin/images", admin(handlers.ListImages))

	return middleware.RequestLogger(logger)(mux)
}
