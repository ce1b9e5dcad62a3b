package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrUnknownJob is returned by RunNow for names that were never registered
var ErrUnknownJob = errors.New("unknown job")

// Job is one cycle of a recurring task
type Job func(ctx context.Context) error

type job struct {
	name     string
	run      Job
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
	// runMu keeps a ticker cycle and a RunNow call from overlapping
	runMu sync.Mutex
}

// Scheduler runs named jobs on fixed intervals until cancelled or stopped
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates an empty scheduler
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*job),
	}
}

// Every runs fn after initialDelay and then every interval. Registering a name
// again replaces the previous job. The returned function cancels the job.
// A non-positive interval registers nothing.
func (s *Scheduler) Every(name string, interval, initialDelay time.Duration, fn Job) (cancel func()) {
	if interval <= 0 {
		log.Printf("[Scheduler] Refusing %s: interval must be positive, got %s", name, interval)
		return func() {}
	}
	if initialDelay < 0 {
		initialDelay = 0
	}

	j := &job{name: name, run: fn, interval: interval, stop: make(chan struct{})}

	s.mu.Lock()
	if previous, ok := s.jobs[name]; ok {
		previous.cancel()
	}
	s.jobs[name] = j
	s.mu.Unlock()

	log.Printf("[Scheduler] Registered %s (every %s, first run in %s)", name, interval, initialDelay)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(j, initialDelay)
	}()

	return func() {
		s.mu.Lock()
		if s.jobs[name] == j {
			delete(s.jobs, name)
		}
		s.mu.Unlock()
		j.cancel()
	}
}

func (s *Scheduler) loop(j *job, initialDelay time.Duration) {
	delay := time.NewTimer(initialDelay)
	defer delay.Stop()

	select {
	case <-delay.C:
		s.execute(s.ctx, j)
	case <-j.stop:
		return
	case <-s.ctx.Done():
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.execute(s.ctx, j)
		case <-j.stop:
			log.Printf("[Scheduler] %s stopped", j.name)
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	j.runMu.Lock()
	defer j.runMu.Unlock()

	start := time.Now()
	if err := j.run(ctx); err != nil {
		log.Printf("[Scheduler] %s failed after %s: %v", j.name, time.Since(start).Round(time.Millisecond), err)
		return err
	}
	return nil
}

// RunNow runs one cycle of the named job synchronously and returns its error
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownJob
	}
	return s.execute(ctx, j)
}

// Stop cancels every job and waits for running cycles to return
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Println("[Scheduler] Scheduler stopped")
}

func (j *job) cancel() {
	j.once.Do(func() { close(j.stop) })
}
