package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/seatwise/ticketing/internal/handler"
	"github.com/seatwise/ticketing/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, which
// load balancers and monitoring probe to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  Availability
// is the hottest read path during on-sales, so the caller can pass a Redis
// response-cache middleware to apply on this group; pass nil to serve every
// request from the database.
func RegisterPublic(e *echo.Echo, a *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/events")
	if cache != nil {
		g.Use(cache)
	}
	// Remaining capacity for an event, across all sectors.
	g.GET("/:id/availability", a.GetAvailability)
	// Per-sector remaining seats, best (highest multiplier) first.
	g.GET("/:id/sectors", a.GetSectors)
}

// RegisterCart registers the authenticated cart and checkout endpoints.
// All of them sit behind JWT validation plus the rate limiter; any known
// role may shop, the role claim only has to be present and recognized.
func RegisterCart(e *echo.Echo, h *handler.CartHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("USER", "PROMOTER", "MOD", "ADMIN"))
	if limiter != nil {
		g.Use(limiter)
	}

	// Add line items to the caller's cart, optionally pinned to a sector.
	g.POST("/events/:id/cart", h.AddToCart)
	// The caller's current cart with per-item pricing and seat placement.
	g.GET("/cart", h.GetCart)
	// Edit holder details or quantity-neutral fields on a cart item.
	g.PATCH("/cart/:id", h.UpdateCartItem)
	// Move a cart item to a sector, or auto-assign the best free seat.
	g.PUT("/cart/:id/sector", h.AssignSector)
	// Drop a cart item and release its seat.
	g.DELETE("/cart/:id", h.RemoveFromCart)
	// Purchase selected cart items atomically.
	g.POST("/checkout", h.Checkout)
	// Completed orders for the caller.
	g.GET("/orders", h.ListOrders)
}
