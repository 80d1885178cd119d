package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/pricewatch/internal/core/config"
	"github.com/vietddude/pricewatch/internal/core/domain"
)

// RunFunc executes one pipeline cycle.
type RunFunc func(ctx context.Context) (*domain.PipelineResult, error)

// runTime is a wall-clock time of day in the local timezone.
type runTime struct {
	hour   int
	minute int
}

// Scheduler triggers pipeline runs at fixed local times each day. It
// checks once a minute so a run fires at most once per scheduled slot.
type Scheduler struct {
	times      []runTime
	runOnStart bool
	run        RunFunc
	log        *slog.Logger
}

// NewScheduler parses the configured "HH:MM" run times.
func NewScheduler(cfg config.ScheduleConfig, run RunFunc) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("scheduler requires a run function")
	}
	times := make([]runTime, 0, len(cfg.Times))
	for _, raw := range cfg.Times {
		rt, err := parseRunTime(raw)
		if err != nil {
			return nil, err
		}
		times = append(times, rt)
	}
	return &Scheduler{
		times:      times,
		runOnStart: cfg.RunOnStart,
		run:        run,
		log:        slog.Default().With("component", "scheduler"),
	}, nil
}

// Start blocks until ctx is cancelled, firing runs at the scheduled
// minutes. Run errors are logged and never stop the schedule.
func (s *Scheduler) Start(ctx context.Context) {
	if s.runOnStart {
		s.fire(ctx, "startup")
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	lastFired := runTime{hour: -1}
	var lastDay int
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rt := runTime{hour: now.Hour(), minute: now.Minute()}
			if !s.due(rt) {
				continue
			}
			// The minute ticker can tick twice inside one wall-clock
			// minute; fire once per slot per day.
			if rt == lastFired && now.YearDay() == lastDay {
				continue
			}
			lastFired = rt
			lastDay = now.YearDay()
			s.fire(ctx, fmt.Sprintf("%02d:%02d", rt.hour, rt.minute))
		}
	}
}

func (s *Scheduler) due(rt runTime) bool {
	for _, t := range s.times {
		if t == rt {
			return true
		}
	}
	return false
}

func (s *Scheduler) fire(ctx context.Context, slot string) {
	s.log.Info("Scheduled run starting", "slot", slot)
	if _, err := s.run(ctx); err != nil {
		s.log.Error("Scheduled run failed", "slot", slot, "error", err)
	}
}

func parseRunTime(raw string) (runTime, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return runTime{}, fmt.Errorf("invalid schedule time %q (want HH:MM): %w", raw, err)
	}
	return runTime{hour: t.Hour(), minute: t.Minute()}, nil
}
