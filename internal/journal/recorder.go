package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

// Sink receives journal records.
type Sink interface {
	Write(ctx context.Context, record models.ActionRecord) error
}

const (
	recorderBuffer = 1024
	writeTimeout   = 5 * time.Second
)

// Recorder numbers applied actions and hands them to its sinks on a background
// goroutine, in application order. Record never blocks: when the sinks fall
// behind and the buffer is full, records are dropped and counted.
type Recorder struct {
	checkoutID string
	codec      *Codec
	sinks      []Sink
	logger     *zap.Logger

	sequence atomic.Int64
	dropped  atomic.Int64
	mu       sync.RWMutex
	closed   bool
	records  chan models.ActionRecord
	done     chan struct{}
}

func NewRecorder(checkoutID string, codec *Codec, logger *zap.Logger, sinks ...Sink) *Recorder {
	return newRecorder(checkoutID, codec, logger, recorderBuffer, sinks...)
}

func newRecorder(checkoutID string, codec *Codec, logger *zap.Logger, buffer int, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		checkoutID: checkoutID,
		codec:      codec,
		sinks:      sinks,
		logger:     logger,
		records:    make(chan models.ActionRecord, buffer),
		done:       make(chan struct{}),
	}
	go r.run()
	return r
}

// Observer adapts the recorder to a store observer.
func Observer[S any](r *Recorder) store.Observer[S] {
	return func(a store.Action, _, _ S) {
		r.Record(a)
	}
}

func (r *Recorder) Record(a store.Action) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn("Journal closed, action not recorded",
			zap.String("checkout_id", r.checkoutID),
			zap.String("action_type", string(a.Type)),
		)
		return
	}
	rec, err := r.codec.Encode(r.checkoutID, r.sequence.Add(1), a)
	if err != nil {
		r.logger.Error("Error encoding action", zap.String("checkout_id", r.checkoutID), zap.Error(err))
		return
	}
	select {
	case r.records <- rec:
	default:
		r.logger.Error("Journal buffer full, action dropped",
			zap.String("checkout_id", r.checkoutID),
			zap.Int64("sequence", rec.Sequence),
			zap.String("action_type", rec.Type),
			zap.Int64("dropped", r.dropped.Add(1)),
		)
	}
}

// Dropped returns the number of records lost to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.records {
		for _, sink := range r.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			if err := sink.Write(ctx, rec); err != nil {
				r.logger.Error("Error writing journal record",
					zap.String("checkout_id", rec.CheckoutID),
					zap.Int64("sequence", rec.Sequence),
					zap.String("action_type", rec.Type),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}

// Close flushes pending records and stops the recorder.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.records)
	r.mu.Unlock()
	<-r.done
}
