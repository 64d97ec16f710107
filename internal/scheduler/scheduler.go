// Package scheduler runs recurring internal jobs from configured cron
// expressions, such as the outreach discovery sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// JobFunc is one scheduled unit of work. The context is cancelled when
// the service stops.
type JobFunc func(ctx context.Context) error

// Service wraps a cron runner. Jobs are registered before Start; an
// empty expression disables the job rather than erroring, so callers
// can pass config values straight through.
type Service struct {
	cron   *rcron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs []string
}

func New() *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cron:   rcron.New(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a named job on a standard 5-field cron expression
// (descriptors like @hourly and @every 10m also work). An empty
// expression is a no-op.
func (s *Service) AddJob(name, expr string, fn JobFunc) error {
	if expr == "" {
		log.Debug().Str("job", name).Msg("job disabled, no schedule")
		return nil
	}

	_, err := s.cron.AddFunc(expr, func() {
		s.run(name, fn)
	})
	if err != nil {
		return fmt.Errorf("registering job %s (%q): %w", name, expr, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, name)
	s.mu.Unlock()
	return nil
}

func (s *Service) run(name string, fn JobFunc) {
	start := time.Now()
	err := fn(s.ctx)
	if err != nil {
		log.Warn().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job failed")
		return
	}
	log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job completed")
}

// JobCount returns the number of enabled jobs.
func (s *Service) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start begins running registered jobs on their schedules.
func (s *Service) Start() {
	s.cron.Start()
	log.Info().Int("jobs", s.JobCount()).Msg("scheduler started")
}

// Stop cancels the job context and waits for in-flight runs to finish.
func (s *Service) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
