package jobs

import (
	"context"
	"encoding/json"
	"time"

	"fitpass/internal/logger"
	"fitpass/internal/metrics"
)

// Worker consumes one job family.
type Worker interface {
	Queue() string
	Handle(ctx context.Context, payload json.RawMessage) error
	// RetainFailed reports whether jobs that exhaust retries are kept on a
	// failed list for operator review instead of being dropped.
	RetainFailed() bool
}

// Dispatcher runs a bounded pool of goroutines per registered worker and
// retries failed jobs with exponential backoff. Failures here never propagate
// to the code that enqueued the job.
type Dispatcher struct {
	queue       *Queue
	concurrency int
	maxTries    int
	workers     []Worker
}

func NewDispatcher(queue *Queue, concurrency, maxTries int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 5
	}
	if maxTries <= 0 {
		maxTries = 3
	}
	return &Dispatcher{
		queue:       queue,
		concurrency: concurrency,
		maxTries:    maxTries,
	}
}

func (d *Dispatcher) Register(w Worker) {
	d.workers = append(d.workers, w)
}

func (d *Dispatcher) Start(ctx context.Context) {
	for _, w := range d.workers {
		for i := 0; i < d.concurrency; i++ {
			go d.run(ctx, w)
		}
		logger.Info("Job workers started", "queue", w.Queue(), "concurrency", d.concurrency)
	}
	go d.reportQueueLengths(ctx)
}

func (d *Dispatcher) run(ctx context.Context, w Worker) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			d.processNext(ctx, w)
		}
	}
}

func (d *Dispatcher) processNext(ctx context.Context, w Worker) {
	result, err := d.queue.redis.BRPop(ctx, 2*time.Second, w.Queue()).Result()
	if err != nil {
		return
	}

	var env Envelope
	if err := json.Unmarshal([]byte(result[1]), &env); err != nil {
		logger.Errorf("Bad job data on %s: %v", w.Queue(), err)
		metrics.RecordJob(w.Queue(), "malformed")
		return
	}

	env.Tries++
	if err := w.Handle(ctx, env.Payload); err != nil {
		logger.Errorf("Job failed on %s (attempt %d): %v", w.Queue(), env.Tries, err)

		if env.Tries < d.maxTries {
			metrics.RecordJob(w.Queue(), "retry")
			time.Sleep(backoff(env.Tries))
			data, _ := json.Marshal(env)
			d.queue.redis.LPush(context.Background(), w.Queue(), data)
			return
		}

		if w.RetainFailed() {
			d.saveFailed(w.Queue(), env, err)
			metrics.RecordJob(w.Queue(), "retained")
		} else {
			logger.Errorf("Job on %s dropped after %d attempts", w.Queue(), env.Tries)
			metrics.RecordJob(w.Queue(), "dropped")
		}
		return
	}

	metrics.RecordJob(w.Queue(), "ok")
}

func (d *Dispatcher) saveFailed(queue string, env Envelope, cause error) {
	failed := map[string]interface{}{
		"job":   env,
		"error": cause.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	d.queue.redis.LPush(context.Background(), queue+":failed", data)
	logger.Errorf("Job moved to failed list: %s", queue+":failed")
}

func (d *Dispatcher) reportQueueLengths(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, w := range d.workers {
				metrics.JobQueueLength.WithLabelValues(w.Queue()).Set(float64(d.queue.Length(ctx, w.Queue())))
			}
		}
	}
}

func backoff(tries int) time.Duration {
	d := time.Second << (tries - 1)
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}
