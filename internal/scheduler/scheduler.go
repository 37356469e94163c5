// Package scheduler runs the periodic inventory jobs (scans, classification,
// liveness re-checks, pruning) on independent tickers.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrJobNotFound is returned when triggering an unregistered job
var ErrJobNotFound = errors.New("job not found")

// RunFunc is the body of a job
type RunFunc func(ctx context.Context) error

// Job is a named unit of periodic work. A zero Interval registers the job for
// manual triggering only.
type Job struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Run        RunFunc
}

// JobInfo provides read-only information about a job
type JobInfo struct {
	Name      string        `json:"name" yaml:"name"`
	Interval  time.Duration `json:"interval" yaml:"interval"`
	Runs      int           `json:"runs" yaml:"runs"`
	Failures  int           `json:"failures" yaml:"failures"`
	LastRun   time.Time     `json:"last_run,omitempty" yaml:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

type entry struct {
	job Job

	mu   sync.Mutex
	info JobInfo
}

// Registry manages registered jobs and their ticker loops. Every run, scheduled
// or triggered, holds the same run slot, so no two jobs ever execute at once.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]*entry
	slot   chan struct{}
	log    zerolog.Logger
	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates an empty registry
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		jobs: make(map[string]*entry),
		slot: make(chan struct{}, 1),
		log:  log.With().Str("component", "scheduler").Logger(),
		now:  time.Now,
	}
}

// Register adds a job. Jobs registered after Start are only reachable via Trigger.
func (r *Registry) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job needs a name and a run function")
	}
	if job.Interval < 0 {
		return fmt.Errorf("job %s: negative interval", job.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	r.jobs[job.Name] = &entry{job: job, info: JobInfo{Name: job.Name, Interval: job.Interval}}

	r.log.Info().Str("job", job.Name).Dur("interval", job.Interval).Msg("registered job")
	return nil
}

// Start begins a ticker loop for every job with a positive interval
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ctx, r.cancel = context.WithCancel(ctx)

	for _, e := range r.jobs {
		if e.job.Interval <= 0 {
			r.log.Debug().Str("job", e.job.Name).Msg("job has no interval, manual trigger only")
			continue
		}
		r.startLoop(e)
	}
}

// Stop cancels every loop and waits for in-flight runs to return
func (r *Registry) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Trigger runs a job now, outside its schedule
func (r *Registry) Trigger(ctx context.Context, name string) error {
	r.mu.RLock()
	e, exists := r.jobs[name]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return r.run(ctx, e)
}

// List returns information about registered jobs, sorted by name
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]JobInfo, 0, len(r.jobs))
	for _, e := range r.jobs {
		e.mu.Lock()
		infos = append(infos, e.info)
		e.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// startLoop starts a goroutine that runs the job on schedule
func (r *Registry) startLoop(e *entry) {
	ctx := r.ctx
	name := e.job.Name

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if e.job.RunOnStart {
			r.runLogged(ctx, e)
		}

		ticker := time.NewTicker(e.job.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Debug().Str("job", name).Msg("stopping job loop")
				return
			case <-ticker.C:
				r.runLogged(ctx, e)
			}
		}
	}()

	r.log.Info().Str("job", name).Dur("interval", e.job.Interval).Msg("started job loop")
}

func (r *Registry) runLogged(ctx context.Context, e *entry) {
	if err := r.run(ctx, e); err != nil && ctx.Err() == nil {
		r.log.Error().Err(err).Str("job", e.job.Name).Msg("job failed")
	}
}

// run waits for the run slot, then executes one run of the job
func (r *Registry) run(ctx context.Context, e *entry) error {
	select {
	case r.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-r.slot }()

	started := r.now()
	r.log.Debug().Str("job", e.job.Name).Msg("running job")

	err := e.job.Run(ctx)

	e.mu.Lock()
	e.info.Runs++
	e.info.LastRun = started
	e.info.LastError = ""
	if err != nil {
		e.info.Failures++
		e.info.LastError = err.Error()
	}
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("job %s: %w", e.job.Name, err)
	}
	r.log.Debug().Str("job", e.job.Name).Dur("took", r.now().Sub(started)).Msg("job complete")
	return nil
}
