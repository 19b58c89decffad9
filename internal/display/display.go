package display

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// bl_power values from the kernel backlight interface.
const (
	powerOn  = "0"
	powerOff = "1"
)

// Controller switches the kiosk screen on and off through a sysfs
// backlight power file. With no path configured every call is a no-op,
// which keeps development machines working.
type Controller struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
	on bool
}

func NewController(path string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{path: path, logger: logger, on: true}
}

func (c *Controller) PowerOn() error {
	return c.setPower(true)
}

func (c *Controller) PowerOff() error {
	return c.setPower(false)
}

// IsOn reports the last state this controller wrote. The hardware may
// disagree if something else touches the backlight file.
func (c *Controller) IsOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on
}

func (c *Controller) setPower(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		c.logger.Debug("no backlight path configured, skipping display power change", slog.Bool("on", on))
		c.on = on
		return nil
	}

	value := powerOff
	if on {
		value = powerOn
	}
	if err := os.WriteFile(c.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write backlight power %q: %w", c.path, err)
	}

	c.on = on
	c.logger.Info("display power changed", slog.Bool("on", on))
	return nil
}
