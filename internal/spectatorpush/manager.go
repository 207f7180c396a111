package spectatorpush

import (
	"context"
	"errors"
	"sync"
	"time"

	"backgammon-arena/internal/session"
	"backgammon-arena/internal/spectatorpush/platforms"

	"github.com/rs/zerolog/log"
)

// Manager turns coordinator events into webhook deliveries. Observe only
// enqueues; a fixed pool of workers sends, retrying with capped exponential
// backoff behind a per-target circuit breaker.
type Manager struct {
	cfg     Config
	senders map[string]platforms.Sender
	roster  *roster
	breaker *breaker
	now     func() time.Time

	queue chan job
	stop  chan struct{}
	once  sync.Once
}

func NewManager(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:     cfg,
		senders: platforms.Registry(cfg.SendTimeout),
		roster:  newRoster(6 * time.Hour),
		breaker: newBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		now:     time.Now,
		queue:   make(chan job, cfg.QueueSize),
		stop:    make(chan struct{}),
	}
}

// Start launches the workers once. They exit, and pending retries are
// abandoned, when ctx ends.
func (m *Manager) Start(ctx context.Context) {
	if !m.cfg.Enabled {
		return
	}
	m.once.Do(func() {
		for i := 0; i < m.cfg.Workers; i++ {
			go m.work(ctx)
		}
		go func() {
			<-ctx.Done()
			close(m.stop)
		}()
		log.Info().Int("targets", len(m.cfg.Targets)).Int("workers", m.cfg.Workers).Msg("spectator push started")
	})
}

// Observe implements session.EventObserver. It runs under the game lock, so a
// full queue drops the delivery instead of waiting.
func (m *Manager) Observe(ev session.Event) {
	if !m.cfg.Enabled || ev.GameID == "" {
		return
	}
	h := m.roster.highlight(ev, m.now())
	if _, ok := Card(h); !ok {
		return
	}
	for _, t := range m.cfg.Targets {
		if t.accepts(h) {
			m.enqueue(job{target: t, hl: h})
		}
	}
}

func (m *Manager) enqueue(j job) {
	select {
	case m.queue <- j:
		metricPushJobs.WithLabelValues("queued").Inc()
	default:
		metricPushJobs.WithLabelValues("queue_full").Inc()
	}
	metricPushQueueLen.Set(float64(len(m.queue)))
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-m.stop:
			return
		case j := <-m.queue:
			metricPushQueueLen.Set(float64(len(m.queue)))
			m.deliver(ctx, j)
		}
	}
}

func (m *Manager) deliver(ctx context.Context, j job) {
	sender := m.senders[j.target.Platform]
	if sender == nil {
		metricPushJobs.WithLabelValues("unknown_platform").Inc()
		return
	}
	key := j.target.key()
	if wait := m.breaker.openFor(key, m.now()); wait > 0 {
		metricPushJobs.WithLabelValues("breaker_open").Inc()
		m.retry(j, wait, errors.New("circuit open"))
		return
	}

	card, _ := Card(j.hl)
	err := sender.Send(ctx, platforms.Destination{URL: j.target.URL, Secret: j.target.Secret}, card)
	m.breaker.record(key, m.now(), err != nil)
	if err == nil {
		metricPushJobs.WithLabelValues("sent").Inc()
		return
	}
	metricPushJobs.WithLabelValues("failed").Inc()

	var serr *platforms.StatusError
	if errors.As(err, &serr) && serr.Permanent() {
		m.drop(j, err)
		return
	}
	delay := m.backoff(j.attempt)
	if serr != nil && serr.RetryAfter > delay {
		delay = serr.RetryAfter
	}
	m.retry(j, delay, err)
}

func (m *Manager) backoff(attempt int) time.Duration {
	d := m.cfg.BackoffBase << attempt
	if d <= 0 || d > m.cfg.BackoffMax {
		return m.cfg.BackoffMax
	}
	return d
}

func (m *Manager) retry(j job, delay time.Duration, cause error) {
	if j.attempt >= m.cfg.MaxRetries {
		m.drop(j, cause)
		return
	}
	j.attempt++
	metricPushJobs.WithLabelValues("retried").Inc()
	time.AfterFunc(delay, func() {
		select {
		case <-m.stop:
		default:
			m.enqueue(j)
		}
	})
}

func (m *Manager) drop(j job, cause error) {
	metricPushJobs.WithLabelValues("dropped").Inc()
	log.Warn().Err(cause).
		Str("game_id", j.hl.GameID).
		Str("event", j.hl.Kind).
		Str("platform", j.target.Platform).
		Int("attempts", j.attempt+1).
		Msg("spectator push dropped")
}
