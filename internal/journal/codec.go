// Package journal records applied store actions and turns the record back into
// actions for replay.
package journal

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

type decodeFunc func([]byte) (any, error)

// Codec converts actions to records. Payloads are stored as JSON and decoded back
// into the Go type registered for their action type.
type Codec struct {
	mu       sync.RWMutex
	decoders map[store.ActionType]decodeFunc
}

func NewCodec() *Codec {
	return &Codec{decoders: make(map[store.ActionType]decodeFunc)}
}

// Register declares T as the payload type of the given action types.
func Register[T any](c *Codec, types ...store.ActionType) {
	decode := func(raw []byte) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range types {
		c.decoders[t] = decode
	}
}

func (c *Codec) Encode(checkoutID string, sequence int64, a store.Action) (models.ActionRecord, error) {
	rec := models.ActionRecord{
		ID:         a.ID,
		CheckoutID: checkoutID,
		Sequence:   sequence,
		Type:       string(a.Type),
		Meta:       a.Meta,
		AppliedAt:  a.Timestamp,
	}
	if a.Payload != nil {
		raw, err := json.Marshal(a.Payload)
		if err != nil {
			return models.ActionRecord{}, fmt.Errorf("marshal payload of %s: %w", a.Type, err)
		}
		rec.Payload = raw
	}
	if a.Error != nil {
		kind := errs.KindOf(a.Error)
		if kind == "" {
			kind = errs.KindStandard
		}
		rec.ErrorKind = string(kind)
		rec.ErrorMessage = a.Error.Error()
	}
	return rec, nil
}

// Decode rebuilds the action of rec. Payloads of unregistered types are dropped.
func (c *Codec) Decode(rec models.ActionRecord) (store.Action, error) {
	a := store.Action{
		ID:        rec.ID,
		Type:      store.ActionType(rec.Type),
		Meta:      rec.Meta,
		Timestamp: rec.AppliedAt,
	}
	if len(rec.Payload) > 0 {
		c.mu.RLock()
		decode, ok := c.decoders[a.Type]
		c.mu.RUnlock()
		if ok {
			payload, err := decode(rec.Payload)
			if err != nil {
				return store.Action{}, fmt.Errorf("decode payload of %s: %w", rec.Type, err)
			}
			a.Payload = payload
		}
	}
	if rec.ErrorKind != "" || rec.ErrorMessage != "" {
		kind := errs.Kind(rec.ErrorKind)
		if kind == "" {
			kind = errs.KindStandard
		}
		a.Error = errs.New(kind, rec.ErrorMessage)
	}
	return a, nil
}
