package kafka

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
)

// ---------------------------------------------------------------------------
// Mock reader
// ---------------------------------------------------------------------------

type mockReader struct {
	cfg  kafkago.ReaderConfig
	msgs chan kafkago.Message

	mu         sync.Mutex
	closeCalls int
}

func newMockReader(topic string, buffer int) *mockReader {
	return &mockReader{
		cfg:  kafkago.ReaderConfig{Topic: topic},
		msgs: make(chan kafkago.Message, buffer),
	}
}

func (r *mockReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	select {
	case msg := <-r.msgs:
		return msg, nil
	case <-ctx.Done():
		return kafkago.Message{}, ctx.Err()
	}
}

func (r *mockReader) Close() error {
	r.mu.Lock()
	r.closeCalls++
	r.mu.Unlock()
	return nil
}

func (r *mockReader) Config() kafkago.ReaderConfig {
	return r.cfg
}

func (r *mockReader) CloseCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeCalls
}

// ---------------------------------------------------------------------------
// Mock writer
// ---------------------------------------------------------------------------

type mockWriter struct {
	mu     sync.Mutex
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *mockWriter) Messages() []kafkago.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make([]kafkago.Message, len(w.msgs))
	copy(cp, w.msgs)
	return cp
}
