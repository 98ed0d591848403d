package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/haulmatch/dispatch-api/internal/api/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Publisher delivers one event to a realtime room.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

type notification struct {
	room    string
	event   string
	payload any
}

// Notifier routes realtime notifications to a fixed set of workers using
// consistent hashing on the room name, so events for one room are published
// in the order they were queued.
type Notifier struct {
	workers   []chan notification
	publisher Publisher
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewNotifier creates a Notifier with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewNotifier(numWorkers int, publisher Publisher, log zerolog.Logger) *Notifier {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	n := &Notifier{
		workers:   make([]chan notification, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range n.workers {
		n.workers[i] = make(chan notification, channelBuffer)
	}
	return n
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	for i, ch := range n.workers {
		n.wg.Add(1)
		go n.runWorker(ctx, i, ch)
	}
}

// Run starts the workers and blocks until ctx is cancelled and they exit.
func (n *Notifier) Run(ctx context.Context) error {
	n.Start(ctx)
	<-ctx.Done()
	n.wg.Wait()
	return nil
}

// Notify queues an event for room. It blocks only while the room's worker
// buffer is full, and gives up when ctx is done.
func (n *Notifier) Notify(ctx context.Context, room, event string, payload any) error {
	idx := n.shardIndex(room)
	select {
	case n.workers[idx] <- notification{room: room, event: event, payload: payload}:
		metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(n.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a room deterministically to a worker index.
func (n *Notifier) shardIndex(room string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return int(h.Sum32() % uint32(len(n.workers)))
}

func (n *Notifier) runWorker(ctx context.Context, id int, ch <-chan notification) {
	defer n.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			metrics.NotifyQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := n.publisher.Publish(ctx, msg.room, msg.event, msg.payload); err != nil {
				metrics.NotifyErrorsTotal.Inc()
				n.log.Error().Err(err).
					Str("room", msg.room).
					Str("event", msg.event).
					Int("worker_id", id).
					Msg("notification publish failed")
			}
		}
	}
}
