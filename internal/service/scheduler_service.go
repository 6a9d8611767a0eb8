package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work run by SchedulerService.
type Job func(ctx context.Context) error

// SchedulerService runs named jobs on cron schedules. Overlapping runs of the
// same job are skipped.
type SchedulerService struct {
	cron    *cron.Cron
	timeout time.Duration

	mu  sync.Mutex
	ctx context.Context
}

// NewSchedulerService builds a scheduler in loc. Each run gets at most timeout;
// zero means no limit.
func NewSchedulerService(loc *time.Location, timeout time.Duration) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &SchedulerService{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		timeout: timeout,
		ctx:     context.Background(),
	}
}

// ScheduleDaily registers job at the given HH:MM wall time.
func (s *SchedulerService) ScheduleDaily(name, at string, job Job) (cron.EntryID, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return 0, err
	}
	log.Printf("[info] schedule %s daily at %s", name, strings.TrimSpace(at))
	return s.cron.AddFunc(spec, s.wrap(name, job))
}

// ScheduleInterval registers job every interval, rounded down to whole seconds.
func (s *SchedulerService) ScheduleInterval(name string, interval time.Duration, job Job) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	log.Printf("[info] schedule %s every %ds", name, seconds)
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), s.wrap(name, job))
}

// Start runs the scheduler. Jobs receive contexts derived from ctx.
func (s *SchedulerService) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *SchedulerService) wrap(name string, job Job) func() {
	return func() {
		s.mu.Lock()
		parent := s.ctx
		s.mu.Unlock()
		if parent.Err() != nil {
			return
		}

		ctx := parent
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, s.timeout)
			defer cancel()
		}
		if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[%s] %v", name, err)
		}
	}
}

func buildDailySpec(at string) (string, error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", at)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
