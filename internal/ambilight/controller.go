package ambilight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/MrTrustworthy/auri/internal/aurora"
	"github.com/MrTrustworthy/auri/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var logger = logging.New("ambilight")

var (
	// ErrAlreadyRunning is returned by Start when an ambilight loop already
	// runs, in this process or another one, for whatever device.
	ErrAlreadyRunning = errors.New("an ambilight loop is already running")
	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("ambilight is not running")
)

// Device is the slice of the Aurora client the loop needs.
type Device interface {
	PanelIDs(ctx context.Context) ([]int, error)
	WriteEffect(ctx context.Context, cmd aurora.EffectCommand) error
}

// Options tune one ambilight session.
type Options struct {
	// Interval is the tick cadence: one capture-encode-push per interval.
	Interval time.Duration
	// PaletteSize is how many dominant colors each tick extracts.
	PaletteSize int
	// Transition is the per-panel crossfade duration.
	Transition time.Duration
	// Grid is the downsampling mosaic edge length.
	Grid int
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Interval <= 0 {
		out.Interval = time.Second
	}
	if out.PaletteSize <= 0 {
		out.PaletteSize = 4
	}
	if out.Grid <= 0 {
		out.Grid = 32
	}
	return out
}

// Controller owns the start/stop lifecycle of the ambilight loop for one
// device. State is Stopped or Running; at most one loop exists at a time
// system-wide, enforced in-process and across invocations via the session
// marker.
type Controller struct {
	deviceName string
	device     Device
	source     Source
	state      *StateFile
	opts       Options

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewController(deviceName string, device Device, source Source, state *StateFile, opts Options) *Controller {
	return &Controller{
		deviceName: deviceName,
		device:     device,
		source:     source,
		state:      state,
		opts:       opts.withDefaults(),
	}
}

// Start transitions to Running, records the session marker and blocks in
// the tick loop until Stop is called, ctx is cancelled, or a fatal error
// occurs. The first tick fires immediately.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	if m, err := c.state.Live(); err != nil {
		c.mu.Unlock()
		return err
	} else if m != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w (device %s, pid %d)", ErrAlreadyRunning, m.Device, m.PID)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	marker := Marker{Device: c.deviceName, PID: os.Getpid(), StartedAt: time.Now()}
	if err := c.state.Write(marker); err != nil {
		c.cancel = nil
		cancel()
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		if err := c.state.Release(marker); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to release session marker")
		}
	}()

	logger.With(
		zap.String("device", c.deviceName),
		zap.Duration("interval", c.opts.Interval),
		zap.Int("paletteSize", c.opts.PaletteSize)).
		Info("Ambilight started")

	return c.run(loopCtx)
}

// Stop signals the running loop to exit at its next safe point. It does not
// wait for an in-flight device write: cancellation is delivered immediately
// and the loop observes it at its next wakeup. When no loop runs in this
// process, the session marker locates the owning process and that one is
// signalled instead.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		return nil
	}

	m, err := c.state.Read()
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotRunning
	}
	if !processAlive(m.PID) {
		// Stale marker from a crashed loop.
		logger.With(zap.Int("pid", m.PID)).Warn("Removing stale session marker")
		if err := c.state.Release(*m); err != nil {
			return err
		}
		return ErrNotRunning
	}
	if err := signalStop(m.PID); err != nil {
		return fmt.Errorf("signalling ambilight process %d: %w", m.PID, err)
	}
	return nil
}

// run is the tick loop: capture, extract, encode, push, wait. Cancellation
// is checked once per iteration at the limiter wait, and once more right
// before the device write so a stop issued mid-tick suppresses the push.
func (c *Controller) run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(c.opts.Interval), 1)

	var panelIDs []int
	for {
		if err := limiter.Wait(ctx); err != nil {
			logger.Info("Ambilight stopped")
			return nil
		}

		if panelIDs == nil {
			ids, err := c.device.PanelIDs(ctx)
			switch {
			case aurora.IsUnreachable(err):
				logger.With(zap.Error(err)).Warn("Device unreachable, retrying next tick")
				continue
			case err != nil:
				logger.With(zap.Error(err)).Error("Failed to read panel layout")
				return err
			}
			panelIDs = ids
		}

		img, err := c.source.Capture()
		if err != nil {
			// Ambilight is meaningless without a display; don't limp along.
			logger.With(zap.Error(err)).Error("Screen capture failed, stopping")
			return err
		}

		palette := ExtractPalette(img, c.opts.PaletteSize, c.opts.Grid)
		cmd, err := EncodeEffect(palette, panelIDs, c.opts.Transition)
		if err != nil {
			logger.With(zap.Error(err)).Error("Effect encoding failed, stopping")
			return err
		}

		if ctx.Err() != nil {
			// Stopped while capturing; skip the write and exit.
			logger.Info("Ambilight stopped")
			return nil
		}

		err = c.device.WriteEffect(ctx, cmd)
		switch {
		case err == nil:
			logger.With(zap.Int("colors", len(palette))).Debug("Pushed effect")
		case errors.Is(err, context.Canceled):
			logger.Info("Ambilight stopped")
			return nil
		case aurora.IsUnreachable(err):
			// Transient by definition; these self-heal, so only warn.
			logger.With(zap.Error(err)).Warn("Device unreachable, skipping tick")
		case aurora.IsUnauthorized(err) || aurora.IsRejected(err):
			logger.With(zap.Error(err)).Error("Device refused effect, stopping")
			return err
		default:
			logger.With(zap.Error(err)).Warn("Effect push failed, skipping tick")
		}
	}
}
