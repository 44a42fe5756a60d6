// Package transport talks to the checkout backend and wallet services over NATS
// request/reply.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
)

// Requester is satisfied by *nats.Conn.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// reply is the envelope every backend service answers with.
type reply struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  map[string]any  `json:"error,omitempty"`
}

type Option func(*client)

func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMaxTries(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.maxTries = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type client struct {
	nc       Requester
	timeout  time.Duration
	maxTries int
	logger   *zap.Logger
}

func newClient(nc Requester, opts ...Option) *client {
	c := &client{nc: nc, timeout: 5 * time.Second, maxTries: 3, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// failure classifies a failed attempt for the retry decision.
type failure int

const (
	failurePermanent failure = iota
	// failureUnsent means nothing answered, so the request was never handled.
	failureUnsent
	// failureTransient means the backend may or may not have handled the request.
	failureTransient
)

// request sends payload to subject and decodes the reply data into out. Only
// attempts that no responder received are retried, so a command is never
// handled twice.
func (c *client) request(ctx context.Context, subject string, payload any, out any) error {
	return c.send(ctx, subject, payload, out, false)
}

// query is request for reads. Timeouts and gateway errors are retried too.
func (c *client) query(ctx context.Context, subject string, payload any, out any) error {
	return c.send(ctx, subject, payload, out, true)
}

func (c *client) send(ctx context.Context, subject string, payload any, out any, idempotent bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", subject, err)
	}

	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = 50 * time.Millisecond
	backoffCfg.MaxInterval = time.Second

	for attempt := 1; ; attempt++ {
		kind, err := c.attempt(ctx, subject, body, out)
		if err == nil || attempt >= c.maxTries {
			return err
		}
		if kind == failurePermanent || (kind == failureTransient && !idempotent) {
			return err
		}
		sleep := backoffCfg.NextBackOff()
		c.logger.Warn("Retrying checkout request",
			zap.String("subject", subject),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", sleep),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(sleep):
		}
	}
}

func (c *client) attempt(ctx context.Context, subject string, body []byte, out any) (failure, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.nc.RequestWithContext(reqCtx, subject, body)
	switch {
	case err == nil:
	case errors.Is(err, nats.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() != nil {
			return failurePermanent, errs.Timeout(err)
		}
		return failureTransient, errs.Timeout(err)
	case errors.Is(err, nats.ErrNoResponders):
		return failureUnsent, errs.Request(&errs.Response{
			Status:     http.StatusServiceUnavailable,
			StatusText: http.StatusText(http.StatusServiceUnavailable),
		}, errs.WithCause(err))
	default:
		return failurePermanent, fmt.Errorf("request %s: %w", subject, err)
	}

	var r reply
	if err := json.Unmarshal(msg.Data, &r); err != nil {
		return failurePermanent, fmt.Errorf("decode %s reply: %w", subject, err)
	}
	if r.Status >= http.StatusBadRequest {
		resp := &errs.Response{Status: r.Status, StatusText: http.StatusText(r.Status), Body: r.Error}
		if msg.Header != nil {
			resp.Headers = map[string]string{}
			for k := range msg.Header {
				resp.Headers[k] = msg.Header.Get(k)
			}
		}
		switch r.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return failureTransient, errs.Request(resp)
		}
		return failurePermanent, errs.Request(resp)
	}
	if out != nil && len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, out); err != nil {
			return failurePermanent, fmt.Errorf("decode %s data: %w", subject, err)
		}
	}
	return failurePermanent, nil
}
