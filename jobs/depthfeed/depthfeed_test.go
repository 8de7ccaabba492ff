package depthfeed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"depthbook/domain/book"
	"depthbook/service"
)

type captureSink struct {
	mu     sync.Mutex
	frames [][]byte
	notify chan struct{}
}

func newCaptureSink() *captureSink {
	return &captureSink{notify: make(chan struct{}, 16)}
}

func (s *captureSink) Publish(_ context.Context, frame []byte) error {
	s.mu.Lock()
	cp := make([]byte, len(frame))
	copy(cp, frame)
	s.frames = append(s.frames, cp)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *captureSink) last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func waitFrame(t *testing.T, s *captureSink) {
	t.Helper()
	select {
	case <-s.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a depth frame")
	}
}

func TestPublishesOnVersionChange(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(log, book.New(), nil, nil)
	sink := newCaptureSink()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(log, svc, 5*time.Millisecond, 10, sink)
	go p.Run(ctx)

	_, err := svc.Place(book.Bid, decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = svc.Place(book.Ask, decimal.NewFromInt(101), decimal.NewFromInt(4))
	require.NoError(t, err)
	waitFrame(t, sink)

	var f Frame
	require.NoError(t, json.Unmarshal(sink.last(), &f))
	require.Equal(t, 1, f.V)
	require.Equal(t, svc.Version(), f.Version)
	require.Equal(t, []Level{{Price: "100", Qty: "10"}}, f.Bids)
	require.Equal(t, []Level{{Price: "101", Qty: "4"}}, f.Asks)
}

func TestIdleBookPublishesNothing(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(log, book.New(), nil, nil)
	sink := newCaptureSink()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(log, svc, time.Millisecond, 10, sink)
	go p.Run(ctx)

	_, err := svc.Place(book.Bid, decimal.NewFromInt(100), decimal.NewFromInt(1))
	require.NoError(t, err)
	waitFrame(t, sink)

	// With no further mutations the version is flat and no ticks fire
	// a publish.
	n := sink.count()
	time.Sleep(25 * time.Millisecond)
	require.Equal(t, n, sink.count())
}
