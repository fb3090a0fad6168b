package termtext

import "time"

// FPSCounter averages the frame rate over a sliding run of frames.
type FPSCounter struct {
	count       uint64
	start       time.Time
	reportEvery uint64
	resetEvery  uint64
	now         func() time.Time
}

// NewFPSCounter returns a counter that starts now.
func NewFPSCounter(cfg FPSConfig) *FPSCounter {
	if cfg.ReportEvery == 0 {
		cfg.ReportEvery = DefaultConfig().FPS.ReportEvery
	}
	if cfg.ResetEvery == 0 {
		cfg.ResetEvery = DefaultConfig().FPS.ResetEvery
	}
	c := &FPSCounter{reportEvery: cfg.ReportEvery, resetEvery: cfg.ResetEvery, now: time.Now}
	c.start = c.now()
	return c
}

// Frame counts one frame.
func (c *FPSCounter) Frame() { c.count++ }

// Report logs the average rate every ReportEvery frames and restarts the
// average every ResetEvery frames. It returns the rate it logged, if any.
func (c *FPSCounter) Report() (fps float64, reported bool) {
	if c.count == 0 {
		return 0, false
	}
	if c.count%c.reportEvery == 0 {
		if elapsed := c.now().Sub(c.start).Seconds(); elapsed > 0 {
			fps = float64(c.count) / elapsed
			reported = true
			Logger().Debug("fps", "fps", fps, "frames", c.count)
		}
	}
	if c.count%c.resetEvery == 0 {
		c.count = 0
		c.start = c.now()
	}
	return fps, reported
}

// Count returns the frames counted since the last reset.
func (c *FPSCounter) Count() uint64 { return c.count }
