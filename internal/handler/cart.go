package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatwise/ticketing/internal/cart"
	"github.com/seatwise/ticketing/internal/queue"
	queue_publisher "github.com/seatwise/ticketing/internal/service"
)

// CartHandler exposes the cart lifecycle over HTTP for the AJAX cart
// widget.  JWT authentication has already run; every method resolves the
// acting user from the context and treats it as the ticket owner.
type CartHandler struct {
	Svc *cart.Service
}

// NewCartHandler constructs a CartHandler.  The service must be non-nil.
func NewCartHandler(svc *cart.Service) *CartHandler {
	if svc == nil {
		panic("nil service passed to NewCartHandler")
	}
	return &CartHandler{Svc: svc}
}

// AddToCart handles POST /v1/events/:id/cart.  The body selects a ticket
// type, an optional sector and a quantity (default 1).  On success it
// returns 201 with the created tickets and their seat assignments.
// Capacity and full-sector conditions come back as 409 with a machine
// readable error code.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body struct {
		TicketTypeID uint64  `json:"ticket_type_id"`
		SectorID     *uint64 `json:"sector_id"`
		Quantity     int     `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TicketTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_type_id is required"})
	}
	if body.Quantity < 0 || body.Quantity > 20 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity out of range"})
	}
	if _, err := h.Svc.Event(c.Request().Context(), eventID); err != nil {
		return writeServiceError(c, err)
	}
	added, err := h.Svc.AddToCart(c.Request().Context(), cart.AddToCartInput{
		EventID:      eventID,
		TicketTypeID: body.TicketTypeID,
		UserID:       userID,
		SectorID:     body.SectorID,
		Quantity:     body.Quantity,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"items": added})
}

// GetCart handles GET /v1/cart: the user's cart tickets, oldest first,
// with final prices.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Svc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateCartItem handles PATCH /v1/cart/:id.  Only holder fields and the
// ticket type can change; absent fields stay untouched.
func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var body struct {
		HolderName    *string `json:"holder_name"`
		HolderSurname *string `json:"holder_surname"`
		HolderGender  *string `json:"holder_gender"`
		TicketTypeID  *uint64 `json:"ticket_type_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	err = h.Svc.UpdateCartItem(c.Request().Context(), userID, ticketID, cart.UpdateCartInput{
		HolderName:    body.HolderName,
		HolderSurname: body.HolderSurname,
		HolderGender:  body.HolderGender,
		TicketTypeID:  body.TicketTypeID,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignSector handles PUT /v1/cart/:id/sector.  With a sector_id in the
// body the ticket moves to that sector; without one the best available
// seat across the event's sectors is claimed.  A 409 with
// no_seats_available after an explicit move means the ticket is now
// seatless and the user should pick another sector.
func (h *CartHandler) AssignSector(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var body struct {
		SectorID *uint64 `json:"sector_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if body.SectorID != nil {
		assignment, err := h.Svc.ReassignSector(ctx, userID, ticketID, *body.SectorID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"seat": assignment})
	}
	assignment, err := h.Svc.AutoAssignSeat(ctx, userID, ticketID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seat": assignment})
}

// RemoveFromCart handles DELETE /v1/cart/:id.  Removal is idempotent: a
// ticket that is gone already (or never was the caller's) yields 404
// without side effects, matching the second call of a double-click.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	removed, err := h.Svc.RemoveFromCart(c.Request().Context(), userID, ticketID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout handles POST /v1/checkout.  The body lists the cart tickets
// to finalize and the payment method.  On success a 201 carries the
// order; the order.completed event is then published for the
// notification pipeline, with failures logged and ignored so a broker
// outage never undoes a committed purchase.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		TicketIDs     []uint64 `json:"ticket_ids"`
		PaymentMethod string   `json:"payment_method"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.TicketIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_ids is required"})
	}
	ctx := c.Request().Context()
	order, err := h.Svc.Checkout(ctx, userID, body.TicketIDs, body.PaymentMethod)
	if err != nil {
		return writeServiceError(c, err)
	}
	event := queue.OrderCompletedEvent{
		OrderID:       order.ID,
		Reference:     order.Reference,
		UserID:        userID,
		TicketIDs:     body.TicketIDs,
		PaymentMethod: order.PaymentMethod,
		CompletedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishOrderCompleted(ctx, event); err != nil {
		log.Printf("checkout: publish order.completed failed for order %d: %v", order.ID, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"order": order})
}

// ListOrders handles GET /v1/orders: the user's order history.
func (h *CartHandler) ListOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Svc.Orders(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}
