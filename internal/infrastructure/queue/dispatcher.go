package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/spoonhq/accounts-api/internal/api/metrics"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes reset-mail jobs to a fixed set of workers using consistent
// hashing on the recipient, so repeat mails to one address stay ordered.
// Delivery is fire-and-forget: failures are logged and counted, never
// surfaced to a handler.
type Dispatcher struct {
	workers []chan ports.ResetMail
	sender  ports.MailSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.MailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ResetMail, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ResetMail, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a mail job to the worker responsible for its recipient.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(mail ports.ResetMail) {
	d.workers[d.shardIndex(mail.Recipient)] <- mail
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ResetMail) {
	for {
		select {
		case <-ctx.Done():
			return
		case mail, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, mail.Recipient, mail.Link); err != nil {
				metrics.ResetMailsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("recipient", mail.Recipient).
					Int("worker_id", id).
					Msg("reset mail delivery failed")
				continue
			}
			metrics.ResetMailsTotal.WithLabelValues("sent").Inc()
			d.log.Debug().Str("recipient", mail.Recipient).Msg("reset mail delivered")
		}
	}
}
