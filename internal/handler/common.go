package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/seatwise/ticketing/internal/cart"
	"github.com/seatwise/ticketing/internal/repository"
)

// getUserID extracts the user_id stored in the echo context by the JWT
// middleware and converts it to uint64.  JWT numeric claims arrive as
// float64 after JSON decoding, so several encodings are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// writeServiceError maps allocation-core errors onto HTTP responses.
// Every recoverable condition gets a distinct error code so the cart
// widget can react without parsing messages; anything unexpected is a
// 500 with a generic body.
func writeServiceError(c echo.Context, err error) error {
	var incomplete *cart.IncompleteTicketError
	switch {
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity_exceeded"})
	case errors.Is(err, repository.ErrNoSeatsAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no_seats_available"})
	case errors.As(err, &incomplete):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":      "incomplete_tickets",
			"ticket_ids": incomplete.TicketIDs,
		})
	case errors.Is(err, repository.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not_owner"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
