package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/session"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

type initializeRequest struct {
	GatewayID   string `json:"gateway_id"`
	Container   string `json:"container"`
	ButtonColor string `json:"button_color"`
}

type executeRequest struct {
	Operation   strategy.Operation     `json:"operation" binding:"required"`
	Credentials models.Credentials     `json:"credentials"`
	Payment     *models.PaymentPayload `json:"payment"`
}

func (h *CheckoutHandler) runner(s *session.Session, c *gin.Context) (*strategy.Runner[state.State], error) {
	return s.Runner(strategy.Domain(c.Param("domain")))
}

func (h *CheckoutHandler) InitializeStrategy(c *gin.Context) {
	var req initializeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondError(c, errs.InvalidArgument("", errs.WithCause(err)), nil)
			return
		}
	}
	methodID := c.Param("method")
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		runner, err := h.runner(s, c)
		if err != nil {
			return s.Store.GetState(), err
		}
		opts := strategy.InitializeOptions{MethodID: methodID, GatewayID: req.GatewayID}
		if req.Container != "" {
			opts.Wallet = &strategy.WalletOptions{
				Container:   req.Container,
				ButtonColor: req.ButtonColor,
				OnError: func(err error) {
					h.logger.Warn("Wallet authorization failed",
						zap.String("checkout_id", s.ID),
						zap.String("method_id", methodID),
						zap.Error(err),
					)
				},
			}
		}
		return runner.Initialize(ctx, opts)
	})
}

func (h *CheckoutHandler) ExecuteStrategy(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errs.InvalidArgument("", errs.WithCause(err)), nil)
		return
	}
	if req.Operation == strategy.OperationSignIn && !h.signIns.Allow(c.Param("id")) {
		h.respondError(c, errRateLimited, nil)
		return
	}
	methodID := c.Param("method")
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		runner, err := h.runner(s, c)
		if err != nil {
			return s.Store.GetState(), err
		}
		return runner.Execute(ctx, strategy.ExecuteOptions{
			Operation:   req.Operation,
			MethodID:    methodID,
			Credentials: req.Credentials,
			Payment:     req.Payment,
		})
	})
}

func (h *CheckoutHandler) DeinitializeStrategy(c *gin.Context) {
	methodID := c.Param("method")
	h.mutate(c, func(ctx context.Context, s *session.Session) (state.State, error) {
		runner, err := h.runner(s, c)
		if err != nil {
			return s.Store.GetState(), err
		}
		return runner.Deinitialize(ctx, methodID)
	})
}
