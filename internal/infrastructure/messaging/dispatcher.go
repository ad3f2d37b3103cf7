package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// Dispatcher registers named handlers on an event bus and wraps each one
// with middleware, retry with exponential backoff, and a dead letter queue
// for events whose handler exhausted its retries.
type Dispatcher struct {
	eventBus    shared.EventBus
	middlewares []Middleware
	retryConfig RetryConfig
	deadLetterQ *DeadLetterQueue
	log         *logger.Logger
	mu          sync.RWMutex
	registered  map[string]struct{}
}

// HandlerRegistration names a handler and overrides dispatch behavior for it.
type HandlerRegistration struct {
	// Name identifies the handler in logs and the dead letter queue.
	Name string

	// Handler processes the event.
	Handler shared.EventHandler

	// MaxRetries overrides the dispatcher retry count when non-negative.
	MaxRetries int
}

// DispatcherConfig contains configuration for the Dispatcher.
type DispatcherConfig struct {
	// EventBus is the bus handlers are subscribed to.
	EventBus shared.EventBus

	// RetryConfig configures retry behavior for failing handlers.
	RetryConfig RetryConfig

	// DeadLetterQueueSize bounds the DLQ, 0 disables it.
	DeadLetterQueueSize int

	// Logger for structured logging.
	Logger *logger.Logger
}

// RetryConfig contains retry configuration.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig(eventBus shared.EventBus) DispatcherConfig {
	return DispatcherConfig{
		EventBus:            eventBus,
		RetryConfig:         DefaultRetryConfig(),
		DeadLetterQueueSize: 1000,
	}
}

// NewDispatcher creates an event dispatcher.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.Logger == nil {
		config.Logger = logger.Default()
	}
	if config.RetryConfig.BackoffMultiplier <= 1 {
		config.RetryConfig = DefaultRetryConfig()
	}

	var dlq *DeadLetterQueue
	if config.DeadLetterQueueSize > 0 {
		dlq = NewDeadLetterQueue(config.DeadLetterQueueSize)
	}

	return &Dispatcher{
		eventBus:    config.EventBus,
		retryConfig: config.RetryConfig,
		deadLetterQ: dlq,
		log:         config.Logger.With(logger.Component("dispatcher")),
		registered:  make(map[string]struct{}),
	}
}

// Use appends a middleware applied to every handler registered afterwards.
func (d *Dispatcher) Use(mw Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, mw)
}

// Register subscribes a named handler for an event type. Handler names
// must be unique across the dispatcher.
func (d *Dispatcher) Register(eventType shared.EventType, reg HandlerRegistration) error {
	if reg.Handler == nil {
		return ErrNilHandler
	}
	if reg.Name == "" {
		return errors.New("handler name is required")
	}

	d.mu.Lock()
	if _, dup := d.registered[reg.Name]; dup {
		d.mu.Unlock()
		return fmt.Errorf("handler %q already registered", reg.Name)
	}
	d.registered[reg.Name] = struct{}{}
	wrapped := d.wrap(reg)
	d.mu.Unlock()

	if err := d.eventBus.Subscribe(eventType, wrapped); err != nil {
		return fmt.Errorf("subscribe %q: %w", reg.Name, err)
	}

	d.log.Debug("registered handler",
		logger.String("handler", reg.Name),
		logger.String("event_type", string(eventType)),
	)
	return nil
}

// wrap layers middleware and retry around the handler. Middleware is applied
// in reverse so the first Use'd runs outermost.
func (d *Dispatcher) wrap(reg HandlerRegistration) shared.EventHandler {
	handler := reg.Handler
	for i := len(d.middlewares) - 1; i >= 0; i-- {
		handler = d.middlewares[i](handler)
	}

	maxRetries := d.retryConfig.MaxRetries
	if reg.MaxRetries > 0 {
		maxRetries = reg.MaxRetries
	}

	return func(event shared.Event) error {
		var lastErr error
		backoff := d.retryConfig.InitialBackoff

		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(backoff)
				backoff = time.Duration(float64(backoff) * d.retryConfig.BackoffMultiplier)
				if backoff > d.retryConfig.MaxBackoff {
					backoff = d.retryConfig.MaxBackoff
				}
			}

			lastErr = d.execute(reg.Name, handler, event)
			if lastErr == nil {
				return nil
			}

			d.log.Warn("handler attempt failed",
				logger.String("handler", reg.Name),
				logger.String("event_type", string(event.EventType())),
				logger.Int("attempt", attempt+1),
				logger.Err(lastErr),
			)
		}

		if d.deadLetterQ != nil {
			d.deadLetterQ.Add(DeadLetter{
				HandlerName: reg.Name,
				Event:       event,
				Attempts:    maxRetries + 1,
				LastError:   lastErr.Error(),
				FailedAt:    time.Now().UTC(),
			})
		}

		return fmt.Errorf("handler %q exhausted retries: %w", reg.Name, lastErr)
	}
}

// execute runs one handler attempt, converting panics into errors so a
// broken handler cannot take the worker down.
func (d *Dispatcher) execute(name string, handler shared.EventHandler, event shared.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %q panicked: %v", name, r)
		}
	}()
	return handler(event)
}

// DeadLetters returns the dead letter queue, nil when disabled.
func (d *Dispatcher) DeadLetters() *DeadLetterQueue {
	return d.deadLetterQ
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// Middleware wraps an event handler.
type Middleware func(next shared.EventHandler) shared.EventHandler

// LoggingMiddleware logs every handled event with its duration.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)

			fields := []logger.Field{
				logger.String("event_type", string(event.EventType())),
				logger.String("aggregate_id", event.AggregateID()),
				logger.Latency(time.Since(start)),
			}
			if err != nil {
				log.Error("event handling failed", append(fields, logger.Err(err))...)
			} else {
				log.Debug("event handled", fields...)
			}
			return err
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DEAD LETTER QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// DeadLetter is an event a handler could not process.
type DeadLetter struct {
	HandlerName string       `json:"handler_name"`
	Event       shared.Event `json:"-"`
	Attempts    int          `json:"attempts"`
	LastError   string       `json:"last_error"`
	FailedAt    time.Time    `json:"failed_at"`
}

// DeadLetterQueue is a bounded in-memory queue of failed events. When full,
// the oldest entry is dropped.
type DeadLetterQueue struct {
	mu      sync.Mutex
	entries []DeadLetter
	maxSize int
	dropped int64
}

// NewDeadLetterQueue creates a queue holding at most maxSize entries.
func NewDeadLetterQueue(maxSize int) *DeadLetterQueue {
	return &DeadLetterQueue{
		entries: make([]DeadLetter, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends a dead letter, evicting the oldest entry when full.
func (q *DeadLetterQueue) Add(letter DeadLetter) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.maxSize {
		q.entries = q.entries[1:]
		q.dropped++
	}
	q.entries = append(q.entries, letter)
}

// Items returns a copy of the queued dead letters.
func (q *DeadLetterQueue) Items() []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]DeadLetter, len(q.entries))
	copy(out, q.entries)
	return out
}

// Size reports the current queue length.
func (q *DeadLetterQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Drain empties the queue and returns its contents.
func (q *DeadLetterQueue) Drain() []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.entries
	q.entries = make([]DeadLetter, 0, q.maxSize)
	return out
}
