package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/lock"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/session"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

var errRateLimited = errors.New("too many sign-in attempts")

var kindStatus = map[errs.Kind]int{
	errs.KindInvalidArgument: http.StatusBadRequest,
	errs.KindNotRegistrable:  http.StatusNotFound,
	errs.KindRequest:         http.StatusBadGateway,
	errs.KindMissingData:     http.StatusConflict,
	errs.KindNotInitialized:  http.StatusConflict,
	errs.KindNotImplemented:  http.StatusNotImplemented,
	errs.KindTimeout:         http.StatusGatewayTimeout,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lock.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrClosed):
		return http.StatusGone
	}
	if status, ok := kindStatus[errs.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func errorBody(err error) any {
	var e *errs.E
	if errors.As(err, &e) {
		return e
	}
	if statusFor(err) == http.StatusInternalServerError {
		return gin.H{"message": "Failed to process checkout request"}
	}
	return gin.H{"message": err.Error()}
}

// respondError writes err with the snapshot the failed operation left behind,
// when there is one.
func (h *CheckoutHandler) respondError(c *gin.Context, err error, snapshot *state.State) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Checkout request failed",
			zap.String("checkout_id", c.Param("id")),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	body := gin.H{"error": errorBody(err)}
	if snapshot != nil {
		body["state"] = snapshot
	}
	c.JSON(status, body)
}
