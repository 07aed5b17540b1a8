package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i2pi/osc-firmware/internal/router"
)

// Recorder defaults.
const (
	DefaultQueueSize = 1024

	// writeTimeout bounds a single repository write.
	writeTimeout = 5 * time.Second
)

// Logger interface for optional logging.
type Logger interface {
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Stats holds recorder counters.
type Stats struct {
	Recorded uint64 `json:"recorded"`
	Dropped  uint64 `json:"dropped"`
	Failed   uint64 `json:"failed"`
}

// Recorder is a router.Observer that writes each change to a Repository.
// ParameterChanged never blocks; changes arriving while the queue is full
// are dropped and counted.
type Recorder struct {
	repo  Repository
	queue chan router.Change

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	recorded atomic.Uint64
	dropped  atomic.Uint64
	failed   atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex
}

// NewRecorder creates a recorder. A queueSize of zero selects DefaultQueueSize.
// Call Start before registering it with the dispatcher.
func NewRecorder(repo Repository, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Recorder{
		repo:  repo,
		queue: make(chan router.Change, queueSize),
		done:  make(chan struct{}),
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(l Logger) {
	r.loggerMu.Lock()
	r.logger = l
	r.loggerMu.Unlock()
}

// Start launches the writer goroutine. Cancelling ctx aborts in-flight
// writes; the goroutine itself runs until Stop.
func (r *Recorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.worker(ctx)
}

// Stop writes the changes still queued and stops the writer.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

// ParameterChanged implements router.Observer.
func (r *Recorder) ParameterChanged(c router.Change) {
	select {
	case <-r.done:
		r.dropped.Add(1)
		return
	default:
	}

	select {
	case r.queue <- c:
	default:
		r.dropped.Add(1)
		r.logWarn("audit queue full, dropping change", "address", c.Address)
	}
}

// Stats returns a snapshot of the counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Recorded: r.recorded.Load(),
		Dropped:  r.dropped.Load(),
		Failed:   r.failed.Load(),
	}
}

func (r *Recorder) worker(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case c := <-r.queue:
			r.write(ctx, c)
		case <-r.done:
			r.drain(context.WithoutCancel(ctx))
			return
		}
	}
}

// drain writes whatever is left in the queue.
func (r *Recorder) drain(ctx context.Context) {
	for {
		select {
		case c := <-r.queue:
			r.write(ctx, c)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, c router.Change) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	entry := &Entry{
		Address:   c.Address,
		Tags:      c.Tags,
		Args:      c.Args,
		Origin:    c.Origin,
		CreatedAt: c.At,
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.failed.Add(1)
		r.logError("audit write failed", "address", c.Address, "error", err)
		return
	}
	r.recorded.Add(1)
}

func (r *Recorder) getLogger() Logger {
	r.loggerMu.RLock()
	defer r.loggerMu.RUnlock()
	return r.logger
}

func (r *Recorder) logWarn(msg string, keysAndValues ...any) {
	if l := r.getLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}

func (r *Recorder) logError(msg string, keysAndValues ...any) {
	if l := r.getLogger(); l != nil {
		l.Error(msg, keysAndValues...)
	}
}
