package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/handlers/notification"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
)

//go:generate mockgen -source=notifier.go -destination=../mocks/worker/mock.go -package=mocks

type jobConsumer interface {
	Consume(ctx context.Context, out chan<- queue.Job) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg queue.NotificationMessage) notification.Result
}

type deliveryObserver interface {
	Completed(msg queue.NotificationMessage)
	Dropped(msg queue.NotificationMessage, reason error)
	Failed(msg queue.NotificationMessage, err error)
	DeadLettered(msg queue.NotificationMessage, err error)
}

// Notifier is a fixed pool of delivery workers pulling from one consumer.
type Notifier struct {
	consumer jobConsumer
	handler  messageHandler
	observer deliveryObserver
}

func NewNotifier(c jobConsumer, h messageHandler, o deliveryObserver) *Notifier {
	return &Notifier{
		consumer: c,
		handler:  h,
		observer: o,
	}
}

// Run consumes jobs with workerCount concurrent handlers until ctx is done or
// the consumer stops. It returns the consumer error, if any.
func (n *Notifier) Run(ctx context.Context, workerCount int) error {
	var wg sync.WaitGroup
	jobs := make(chan queue.Job) // unbuffered: the consumer requeues what no worker took

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumeErr := make(chan error, 1)
	go func() {
		defer cancel()
		err := n.consumer.Consume(ctx, jobs)
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume messages")
		}
		consumeErr <- err
	}()

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Printf("worker-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("worker-%d shutting down", id)
					return
				case job := <-jobs:
					n.process(ctx, job)
				}
			}
		}(i)
	}

	wg.Wait()
	err := <-consumeErr
	zlog.Logger.Print("notifier stopped")

	return err
}

func (n *Notifier) process(ctx context.Context, job queue.Job) {
	msg := job.Payload()
	res := n.handler.HandleMessage(ctx, msg)

	var err error
	switch res.Outcome {
	case notification.OutcomeDone:
		err = job.Ack()
		n.observer.Completed(msg)
	case notification.OutcomeDrop:
		err = job.Ack()
		n.observer.Dropped(msg, res.Err)
	case notification.OutcomeRetry:
		if job.Exhausted() {
			n.observer.DeadLettered(msg, res.Err)
		} else {
			n.observer.Failed(msg, res.Err)
		}
		err = job.Retry(ctx, res.Err)
	case notification.OutcomeReject:
		n.observer.DeadLettered(msg, res.Err)
		err = job.Reject(ctx, res.Err)
	}

	if err != nil {
		zlog.Logger.Error().Err(err).
			Str("job_id", msg.JobID.String()).
			Str("outcome", res.Outcome.String()).
			Msg("failed to settle job")
	}
}
