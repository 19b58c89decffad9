package display

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule drives the screen on and off at fixed local times. It only
// touches display power; task state is never computed here.
type Schedule struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewSchedule(loc *time.Location, logger *slog.Logger) *Schedule {
	if logger == nil {
		logger = slog.Default()
	}
	return &Schedule{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		logger: logger,
	}
}

// Apply registers daily power-on and power-off jobs at the given HH:MM
// times. Either time may be empty to skip that transition.
func (s *Schedule) Apply(onAt, offAt string, ctrl *Controller) error {
	if onAt != "" {
		if err := s.scheduleDaily(onAt, "display on", ctrl.PowerOn); err != nil {
			return err
		}
	}
	if offAt != "" {
		if err := s.scheduleDaily(offAt, "display off", ctrl.PowerOff); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schedule) scheduleDaily(timeStr, name string, job func() error) error {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return err
	}
	_, err = s.cron.AddFunc(spec, func() {
		if err := job(); err != nil {
			s.logger.Error("scheduled display change failed", slog.String("job", name), slog.String("error", err.Error()))
		}
	})
	return err
}

func (s *Schedule) Start() {
	s.cron.Start()
}

func (s *Schedule) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
