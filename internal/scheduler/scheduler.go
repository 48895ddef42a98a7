// Package scheduler runs the daily weather briefing.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	spec     string
	briefing func(ctx context.Context) error
}

func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.Local)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
	}
}

// SetBriefingFunction sets the job the cron entry runs.
func (s *Scheduler) SetBriefingFunction(f func(ctx context.Context) error) {
	s.briefing = f
}

func (s *Scheduler) Start() error {
	if s.briefing == nil {
		log.Println("briefing function not set, scheduler idle")
		return nil
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		log.Printf("daily briefing triggered (%s)", s.spec)
		if err := s.briefing(s.ctx); err != nil {
			log.Printf("daily briefing failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("scheduler started, briefing at %q", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
