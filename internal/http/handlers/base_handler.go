// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vanbook/internal/modules/booking"
	"vanbook/internal/modules/pricing"
	"vanbook/internal/modules/quote"
	"vanbook/internal/payment"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the UUIDs issued for quotes and bookings.
func isValidID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeQuoteError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, quote.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, pricing.ErrNegativeCharge), errors.Is(err, pricing.ErrSplitMismatch):
		writeError(c, http.StatusInternalServerError, "pricing unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBookingError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, booking.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, quote.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrQuoteExpired):
		writeError(c, http.StatusGone, err.Error())
	case errors.Is(err, booking.ErrNotPaid):
		writeError(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, payment.ErrDisabled):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
