// Package dispatcher delivers notifications off the request path. Dispatch
// never blocks and never reports delivery failures to the caller.
package dispatcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"taskhire/pkg/kafka"
	"taskhire/pkg/logger"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Notifier is what domain services depend on.
type Notifier interface {
	Dispatch(n *model.Notification) bool
}

// Sink performs one delivery attempt.
type Sink interface {
	Deliver(ctx context.Context, n *model.Notification) error
}

type Config struct {
	Workers     int
	QueueSize   int
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type Stats struct {
	Queued    int64 `json:"queued"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

type Dispatcher struct {
	sink  Sink
	cfg   Config
	log   *logger.Logger
	queue chan *model.Notification

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	queued    atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// New starts cfg.Workers goroutines reading from a queue of cfg.QueueSize.
func New(sink Sink, cfg Config, log *logger.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	d := &Dispatcher{
		sink:  sink,
		cfg:   cfg,
		log:   log,
		queue: make(chan *model.Notification, cfg.QueueSize),
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.worker(i)
	}

	log.Info("Notification dispatcher started", "workers", cfg.Workers, "queue_size", cfg.QueueSize)
	return d
}

// Dispatch enqueues n and reports whether it was accepted. A full queue or a
// closed dispatcher drops the notification with a log line.
func (d *Dispatcher) Dispatch(n *model.Notification) bool {
	if n == nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher closed")
		return false
	}

	select {
	case d.queue <- n:
		d.queued.Add(1)
		return true
	default:
		d.drop(n, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(n *model.Notification, reason string) {
	d.dropped.Add(1)
	d.log.Warn("Notification dropped",
		"reason", reason,
		"receiver_id", n.Receiver.ID,
		"receiver_role", n.Receiver.Role,
		"type", n.Type,
	)
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(id, n)
	}
}

func (d *Dispatcher) deliver(workerID int, n *model.Notification) {
	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err = d.attempt(n)
		if err == nil {
			d.delivered.Add(1)
			return
		}
		if !IsRetryable(err) || attempt == d.cfg.MaxAttempts {
			break
		}
		time.Sleep(d.cfg.Backoff * time.Duration(attempt))
	}

	d.failed.Add(1)
	d.log.Error("Notification delivery failed",
		"worker", workerID,
		"receiver_id", n.Receiver.ID,
		"receiver_role", n.Receiver.Role,
		"type", n.Type,
		"error", err,
	)
}

// attempt runs one delivery under its own deadline, detached from the
// request that produced n.
func (d *Dispatcher) attempt(n *model.Notification) error {
	ctx := context.Background()
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	return d.sink.Deliver(ctx, n)
}

// Close stops accepting notifications and waits for queued ones to be
// delivered or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		stats := d.Stats()
		d.log.Info("Notification dispatcher drained",
			"delivered", stats.Delivered,
			"failed", stats.Failed,
			"dropped", stats.Dropped,
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:    d.queued.Load(),
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// notSentPatterns match failures raised before a request reached the server:
// dialing and server selection. Timeouts and resets are absent because the
// write may already have been applied.
var notSentPatterns = []string{
	"connection refused",
	"no such host",
	"network is unreachable",
	"server selection error",
}

// IsRetryable reports whether a failed delivery provably wrote nothing, so
// another attempt cannot produce a duplicate notification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, kafka.ErrProducerClosed) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range notSentPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
