package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeReader struct {
	messages []kafka.Message
	errs     []error
	closed   bool
}

func (r *fakeReader) ReadMessage(context.Context) (kafka.Message, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (s *fakeSessions) Remove(_ context.Context, checkoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, checkoutID)
	return s.err
}

func TestReaperRemovesCompletedCheckouts(t *testing.T) {
	reader := &fakeReader{
		errs: []error{errors.New("broker hiccup")},
		messages: []kafka.Message{
			{Value: []byte(`{"checkout_id":"c1","status":"completed"}`)},
			{Value: []byte(`not json`)},
			{Key: []byte("c2"), Value: []byte(`{"status":"abandoned"}`)},
		},
	}
	sessions := &fakeSessions{err: errors.New("already gone")}

	require.NoError(t, NewSessionReaper(reader, sessions, nil).Run(context.Background()))
	require.Equal(t, []string{"c1", "c2"}, sessions.removed)
	require.True(t, reader.closed)
}

func TestReaperStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &fakeReader{errs: []error{context.Canceled}}

	require.NoError(t, NewSessionReaper(reader, &fakeSessions{}, nil).Run(ctx))
	require.True(t, reader.closed)
}
