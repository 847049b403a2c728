package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/agrodecision/agrodecision/internal/analysis"
	"github.com/agrodecision/agrodecision/internal/enviro"
)

// Scheduler periodically refreshes environmental readings for tracked sites
// so analyses against them hit a warm cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *analysis.Service
	sites     []enviro.Coordinate
	interval  time.Duration
}

// New creates a Scheduler.
func New(sites []enviro.Coordinate, interval time.Duration, service *analysis.Service) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		sites:     sites,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.sites) == 0 {
		log.Println("scheduler: no tracked sites configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: refreshing tracked sites")

		var wg sync.WaitGroup
		for _, site := range s.sites {
			site := site
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				s.service.Refresh(ctx, site)
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed tracked site refresh")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
