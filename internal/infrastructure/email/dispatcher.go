package email

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"servibid/pkg/logger"
	"servibid/pkg/metrics"
)

const sendTimeout = 10 * time.Second

// Dispatcher sends emails from a bounded queue on a fixed number of workers.
// Enqueue never blocks; when the queue is full the message is dropped.
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	workers int
	wg      sync.WaitGroup
	log     zerolog.Logger
}

func NewDispatcher(sender Sender, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, queueSize),
		workers: workers,
		log:     logger.WithComponent("email"),
	}
}

// Start launches the workers. They drain the queue and exit once ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Enqueue(msg Message) {
	if msg.To == "" {
		return
	}
	select {
	case d.queue <- msg:
	default:
		metrics.EmailsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("to", msg.To).Str("subject", msg.Subject).Msg("email queue full, dropping message")
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case msg := <-d.queue:
			d.send(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-d.queue:
					d.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		metrics.EmailsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("email send failed")
		return
	}
	metrics.EmailsTotal.WithLabelValues("sent").Inc()
}
