package handlers

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
)

const streamWriteTimeout = 5 * time.Second

// Stream upgrades to a websocket and pushes the checkout snapshot every time it
// changes. Slow readers only see the latest snapshot. The socket is closed when
// the checkout session is.
func (h *CheckoutHandler) Stream(c *gin.Context) {
	s, err := h.sessions.Open(c.Param("id"))
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.String("checkout_id", s.ID), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(c.Request.Context())
	latest := make(chan state.State, 1)
	unsubscribe := s.Store.Subscribe(func(snapshot state.State) {
		for {
			select {
			case latest <- snapshot:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-s.Store.Done():
			_ = conn.Close(websocket.StatusGoingAway, "checkout session closed")
			return
		case snapshot := <-latest:
			if err := h.write(ctx, conn, snapshot); err != nil {
				h.logger.Debug("Checkout stream closed", zap.String("checkout_id", s.ID), zap.Error(err))
				return
			}
		}
	}
}

func (h *CheckoutHandler) write(ctx context.Context, conn *websocket.Conn, snapshot state.State) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
