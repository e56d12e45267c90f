// Package scheduler runs the crawl and repair jobs on fixed intervals, one at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
)

// ErrUnknownJob is returned when triggering a job that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// JobFunc runs one job. limit is zero unless the caller asked for a specific batch size.
type JobFunc func(ctx context.Context, limit int) error

// Job is a named unit of scheduled work.
type Job struct {
	Name       string
	Spec       string
	RunOnStart bool
	Run        JobFunc
}

// JobInfo is a snapshot of a registered job.
type JobInfo struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	Next      time.Time `json:"next_run,omitempty"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Running   bool      `json:"running"`
}

type entry struct {
	job     Job
	id      cron.EntryID
	lastRun time.Time
	lastErr error
	running bool
}

// Scheduler wraps a cron instance. Job runs are serialised by runMu, so a triggered
// job waits for the one in progress.
type Scheduler struct {
	cron   *cron.Cron
	parser cron.Parser

	runMu sync.Mutex

	mu      sync.Mutex
	entries map[string]*entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zerolog.Logger
}

func New() *Scheduler {
	log := logger.Component("scheduler")
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cronLog := cronLogger{log: log}
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser), cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog))),
		parser:  parser,
		entries: make(map[string]*entry),
		ctx:     context.Background(),
		log:     log,
	}
}

// Add registers a job. It must be called before Start.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job needs a name and a run func")
	}
	if _, err := s.parser.Parse(job.Spec); err != nil {
		return fmt.Errorf("parse schedule %q for %s: %w", job.Spec, job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}

	name := job.Name
	id, err := s.cron.AddFunc(job.Spec, func() {
		s.log.Info().Str("job", name).Msg("Cron triggered job")
		s.run(s.ctx, name, 0)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.entries[name] = &entry{job: job, id: id}
	s.log.Info().Str("job", name).Str("spec", job.Spec).Bool("run_on_start", job.RunOnStart).Msg("Job registered")
	return nil
}

// Start begins the cron loop and launches the RunOnStart jobs in the background.
// Jobs run with ctx; cancelling it stops the job in progress between items.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()

	for _, name := range s.names() {
		s.mu.Lock()
		onStart := s.entries[name].job.RunOnStart
		s.mu.Unlock()
		if onStart {
			_ = s.Trigger(name, 0)
		}
	}
	s.log.Info().Int("jobs", len(s.entries)).Msg("Scheduler started")
}

// Stop halts the cron loop, cancels the running job and waits for it to return or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronCtx := s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

// Trigger runs the named job in the background. It still waits its turn behind any job
// already running.
func (s *Scheduler) Trigger(name string, limit int) error {
	s.mu.Lock()
	_, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.ctx, name, limit)
	}()
	return nil
}

// Jobs lists the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	next := make(map[cron.EntryID]time.Time)
	for _, e := range s.cron.Entries() {
		next[e.ID] = e.Next
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.entries))
	for _, e := range s.entries {
		info := JobInfo{
			Name:    e.job.Name,
			Spec:    e.job.Spec,
			Next:    next[e.id],
			LastRun: e.lastRun,
			Running: e.running,
		}
		if e.lastErr != nil {
			info.LastError = e.lastErr.Error()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) run(ctx context.Context, name string, limit int) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	e := s.entries[name]
	e.running = true
	run := e.job.Run
	s.mu.Unlock()

	log := s.log.With().Str("job", name).Logger()
	log.Info().Int("limit", limit).Msg("Job started")
	start := time.Now()

	err := run(ctx, limit)

	s.mu.Lock()
	e.running = false
	e.lastRun = start
	e.lastErr = err
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Job failed")
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("Job finished")
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	log *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
