package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seatwise/ticketing/internal/cart"
)

// AvailabilityHandler exposes the read-only capacity views consumed by
// the public event pages.  These routes carry no authentication and sit
// behind the response cache; the numbers are advisory snapshots, claims
// always revalidate against the database.
type AvailabilityHandler struct {
	Svc *cart.Service
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(svc *cart.Service) *AvailabilityHandler {
	if svc == nil {
		panic("nil service passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Svc: svc}
}

// GetAvailability handles GET /v1/events/:id/availability: the event's
// ceiling, tickets counted against it and the remainder.  Events without
// linked sectors report unlimited=true.
func (h *AvailabilityHandler) GetAvailability(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, err := h.Svc.Event(c.Request().Context(), eventID); err != nil {
		return writeServiceError(c, err)
	}
	avail, err := h.Svc.Availability(c.Request().Context(), eventID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, avail)
}

// GetSectors handles GET /v1/events/:id/sectors: the event's sellable
// sectors, best first, each with its free seat count.
func (h *AvailabilityHandler) GetSectors(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, err := h.Svc.Event(c.Request().Context(), eventID); err != nil {
		return writeServiceError(c, err)
	}
	sectors, err := h.Svc.SectorsWithAvailability(c.Request().Context(), eventID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": sectors})
}
