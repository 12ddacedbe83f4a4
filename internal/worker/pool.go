package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail      = "jobs:email"
	QueueReposicion = "jobs:reposicion"

	JobEmail      = "email"
	JobReposicion = "reposicion"

	// MaxAttempts is how many times a job runs before it lands in the DLQ.
	MaxAttempts = 3
)

// ErrQueueUnavailable is returned by the Dispatcher when Redis is not wired.
var ErrQueueUnavailable = errors.New("worker: cola de trabajos no disponible")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// ── Dispatcher ───────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

// EnqueueReposicion pushes a replenishment check for one location.
func (d *Dispatcher) EnqueueReposicion(ctx context.Context, payload ReposicionJobPayload) error {
	return d.enqueue(ctx, QueueReposicion, JobReposicion, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	if d == nil || d.rdb == nil {
		return ErrQueueUnavailable
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// ── Pool ─────────────────────────────────────────────────────────────────────

// Pool runs N goroutines blocking on BRPOP over every registered queue.
type Pool struct {
	rdb      *redis.Client
	metrics  *metrics.Metrics
	mu       sync.RWMutex
	handlers map[string]Handler
	queues   []string
}

func NewPool(rdb *redis.Client, m *metrics.Metrics) *Pool {
	return &Pool{rdb: rdb, metrics: m, handlers: make(map[string]Handler)}
}

// Register binds jobType to h and adds queue to the BRPOP set.
func (p *Pool) Register(queue, jobType string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches numWorkers goroutines. Each goroutine blocks on BRPOP and
// uses no CPU while idle. The returned WaitGroup completes after ctx is done.
func (p *Pool) Start(ctx context.Context, numWorkers int) *sync.WaitGroup {
	wg := &sync.WaitGroup{}
	if p.rdb == nil {
		log.Warn().Msg("worker pool disabled: redis not configured")
		return wg
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
	return wg
}

// Backoff bounds between BRPOP attempts while Redis is failing.
const (
	minPollBackoff = 100 * time.Millisecond
	maxPollBackoff = 5 * time.Second
)

func (p *Pool) run(ctx context.Context, id int) {
	var backoff time.Duration
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			switch {
			case err == nil:
				backoff = 0
			case errors.Is(err, redis.Nil) || ctx.Err() != nil:
				backoff = 0
				continue
			default:
				backoff = nextBackoff(backoff)
				log.Warn().Err(err).Int("worker", id).Dur("retry_in", backoff).Msg("brpop failed")
				sleepCtx(ctx, backoff)
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.dispatch(ctx, result[0], result[1])
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d < minPollBackoff {
		return minPollBackoff
	}
	if d *= 2; d > maxPollBackoff {
		return maxPollBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// outcome of one attempt at a job.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
	outcomeDead
	outcomeDiscard
)

// handle runs the registered handler and decides what happens to the job.
// It never touches Redis.
func (p *Pool) handle(ctx context.Context, queue, raw string) (outcome, Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return outcomeDiscard, job, fmt.Errorf("unmarshal job: %w", err)
	}

	p.mu.RLock()
	h, ok := p.handlers[job.Type]
	p.mu.RUnlock()
	if !ok {
		return outcomeDead, job, fmt.Errorf("no handler for job type %q", job.Type)
	}

	job.Attempts++
	if err := h(ctx, job.Payload); err != nil {
		if job.Attempts >= MaxAttempts {
			return outcomeDead, job, err
		}
		return outcomeRetry, job, err
	}
	return outcomeDone, job, nil
}

func (p *Pool) dispatch(ctx context.Context, queue, raw string) {
	result, job, err := p.handle(ctx, queue, raw)
	switch result {
	case outcomeDone:
		p.metrics.RecordJob(job.Type, "ok")
		log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
	case outcomeRetry:
		p.metrics.RecordJob(job.Type, "retry")
		log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeued")
		encoded, mErr := json.Marshal(job)
		if mErr == nil {
			mErr = p.rdb.LPush(ctx, queue, encoded).Err()
		}
		if mErr != nil {
			SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "requeue failed: "+mErr.Error(), job.Attempts)
		}
	case outcomeDead:
		p.metrics.RecordJob(job.Type, "dead")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
	case outcomeDiscard:
		p.metrics.RecordJob("unknown", "discarded")
		log.Error().Err(err).Str("queue", queue).Msg("discarding malformed job")
	}
}
