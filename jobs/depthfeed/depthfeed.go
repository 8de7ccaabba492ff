// Package depthfeed publishes periodic top-of-book depth frames.
// Frames are full snapshots, not diffs, so every sink is idempotent
// and late joiners need no recovery protocol.
package depthfeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"depthbook/domain/book"
	"depthbook/service"
)

// Sink receives marshalled depth frames. The Kafka producer and the
// websocket hub both implement it.
type Sink interface {
	Publish(ctx context.Context, frame []byte) error
}

// Frame is the published depth snapshot.
type Frame struct {
	V       int     `json:"v"`
	Version uint64  `json:"version"`
	TS      int64   `json:"ts"`
	Bids    []Level `json:"bids"`
	Asks    []Level `json:"asks"`
}

type Level struct {
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

type Publisher struct {
	log      *slog.Logger
	svc      *service.BookService
	sinks    []Sink
	interval time.Duration
	depth    int
}

func New(log *slog.Logger, svc *service.BookService, interval time.Duration, depth int, sinks ...Sink) *Publisher {
	return &Publisher{
		log:      log,
		svc:      svc,
		sinks:    sinks,
		interval: interval,
		depth:    depth,
	}
}

// Run publishes a frame per tick while the book version moves. Idle
// books publish nothing.
func (p *Publisher) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	var lastVersion uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			v := p.svc.Version()
			if v == lastVersion {
				continue
			}
			lastVersion = v
			p.publish(ctx, v)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, version uint64) {
	snap := p.svc.Depth(p.depth)
	frame, err := json.Marshal(Frame{
		V:       1,
		Version: version,
		TS:      time.Now().UnixNano(),
		Bids:    toLevels(snap.Bids),
		Asks:    toLevels(snap.Asks),
	})
	if err != nil {
		p.log.Error("depth frame marshal failed", "err", err)
		return
	}

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, frame); err != nil {
			p.log.Warn("depth publish failed", "err", err)
		}
	}
}

func toLevels(levels []book.PriceLevel) []Level {
	return lo.Map(levels, func(l book.PriceLevel, _ int) Level {
		return Level{Price: l.Price.String(), Qty: l.Qty.String()}
	})
}
