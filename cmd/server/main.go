package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"depthbook/api/httpapi"
	"depthbook/api/ws"
	"depthbook/domain/book"
	"depthbook/infra/config"
	"depthbook/infra/kafka"
	"depthbook/infra/logging"
	"depthbook/infra/outbox"
	"depthbook/infra/wal"
	"depthbook/jobs/broadcaster"
	"depthbook/jobs/depthfeed"
	"depthbook/service"
	"depthbook/snapshot"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.File)

	// ---------------- Durability ----------------

	entryWAL, err := wal.Open(wal.Config{
		Dir:             cfg.WAL.Dir,
		SegmentSize:     cfg.SegmentSize(),
		SegmentDuration: cfg.SegmentAge(),
	})
	if err != nil {
		log.Error("wal init failed", "err", err)
		os.Exit(1)
	}
	defer entryWAL.Close()

	ob, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		log.Error("outbox init failed", "err", err)
		os.Exit(1)
	}
	defer ob.Close()

	// ---------------- State recovery ----------------

	b := book.New()

	snapSeq, err := snapshot.Load(cfg.Snapshot.Dir, b)
	if err != nil {
		log.Error("snapshot load failed", "err", err)
		os.Exit(1)
	}

	svc := service.New(log, b, entryWAL, ob)
	if err := svc.ReplayFromWAL(cfg.WAL.Dir, snapSeq); err != nil {
		log.Error("wal replay failed", "err", err)
		os.Exit(1)
	}
	log.Info("book recovered", "orders", b.Len(), "snapshot_seq", snapSeq)

	// ---------------- Background jobs ----------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc.StartSnapshotJob(ctx, cfg.Snapshot.Dir, cfg.SnapshotInterval())

	hub := ws.NewHub(log)
	defer hub.Close()

	sinks := []depthfeed.Sink{hub}
	if cfg.Kafka.Enabled {
		bc, err := broadcaster.New(log, ob, cfg.Kafka.Brokers, cfg.Kafka.EventTopic, 250*time.Millisecond)
		if err != nil {
			log.Error("broadcaster init failed", "err", err)
			os.Exit(1)
		}
		defer bc.Close()
		go bc.Run(ctx)

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DepthTopic)
		defer producer.Close()
		sinks = append(sinks, producer)
	}

	feed := depthfeed.New(log, svc, cfg.FeedInterval(), cfg.Feed.Depth, sinks...)
	go feed.Run(ctx)

	// ---------------- HTTP ----------------

	srv := httpapi.New(cfg.Server.Addr, log, svc, hub)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("http server exited", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", "err", err)
	}
	_ = entryWAL.Sync()
}
