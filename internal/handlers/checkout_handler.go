package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/session"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
)

// Locker serializes mutations of one checkout across orchestrator replicas.
type Locker interface {
	WithLock(ctx context.Context, checkoutID string, fn func(ctx context.Context) error) error
}

type noLock struct{}

func (noLock) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type CheckoutHandler struct {
	sessions *session.Manager
	locker   Locker
	signIns  *RateLimiter
	logger   *zap.Logger
}

func NewCheckoutHandler(sessions *session.Manager, locker Locker, signIns *RateLimiter, logger *zap.Logger) *CheckoutHandler {
	if locker == nil {
		locker = noLock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{sessions: sessions, locker: locker, signIns: signIns, logger: logger}
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

// mutate runs fn against the session of the :id checkout while holding its lock
// and writes the resulting snapshot.
func (h *CheckoutHandler) mutate(c *gin.Context, fn func(ctx context.Context, s *session.Session) (state.State, error)) {
	s, err := h.sessions.Open(c.Param("id"))
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	var (
		snapshot state.State
		opErr    error
	)
	err = h.locker.WithLock(c.Request.Context(), s.ID, func(ctx context.Context) error {
		snapshot, opErr = fn(ctx, s)
		return opErr
	})
	if err != nil {
		if opErr != nil {
			h.respondError(c, err, &snapshot)
			return
		}
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *CheckoutHandler) GetState(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Checkout session not found"}})
		return
	}
	c.JSON(http.StatusOK, s.Store.GetState())
}

func (h *CheckoutHandler) LoadCheckout(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		return s.Dispatch(ctx, s.Checkouts.LoadCheckout(s.ID))
	})
}

func (h *CheckoutHandler) LoadPaymentMethods(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		return s.Dispatch(ctx, s.PaymentMethods.LoadPaymentMethods(s.ID))
	})
}

func (h *CheckoutHandler) ApplyGiftCertificate(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errs.InvalidArgument("", errs.WithCause(err)), nil)
		return
	}
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		return s.Dispatch(ctx, s.GiftCertificates.ApplyGiftCertificate(s.ID, req.Code))
	})
}

func (h *CheckoutHandler) RemoveGiftCertificate(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		return s.Dispatch(ctx, s.GiftCertificates.RemoveGiftCertificate(s.ID, c.Param("code")))
	})
}

func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errs.InvalidArgument("", errs.WithCause(err)), nil)
		return
	}
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		return s.Dispatch(ctx, s.Coupons.ApplyCoupon(s.ID, req.Code))
	})
}

func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		return s.Dispatch(ctx, s.Coupons.RemoveCoupon(s.ID, c.Param("code")))
	})
}

// ClickElement clicks a button a wallet strategy mounted into the session's
// document.
func (h *CheckoutHandler) ClickElement(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		el, ok := s.Document.Element(c.Param("element"))
		if !ok {
			return s.Store.GetState(), errs.MissingData("element")
		}
		button, ok := el.(*provider.Button)
		if !ok {
			return s.Store.GetState(), errs.InvalidArgument("Only buttons can be clicked.")
		}
		err := button.Click(ctx)
		return s.Store.GetState(), err
	})
}

// CloseCheckout tears the session down.
func (h *CheckoutHandler) CloseCheckout(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Remove(c.Request.Context(), id); err != nil {
		h.respondError(c, err, nil)
		return
	}
	h.signIns.Forget(id)
	c.Status(http.StatusNoContent)
}
