// Package refresh drives periodic dashboard reloads: a one-second tick
// counts a progress indicator down from 100 to 0 over the configured
// period, then fires the refresh callback and starts the next cycle.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"solarweather/internal/logger"
)

const (
	// DefaultPeriod is the period a controller starts with, in seconds.
	DefaultPeriod = 60
	tickInterval  = time.Second
	fullProgress  = 100.0
)

// ErrInvalidPeriod is returned for periods of zero or fewer seconds.
var ErrInvalidPeriod = errors.New("refresh period must be positive")

// Indicator displays refresh progress, 100 right after a refresh and
// approaching 0 as the next one nears.
type Indicator interface {
	SetProgress(percent float64)
}

// Ticker is the subset of *time.Ticker the controller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func newTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// PeriodOption is one entry of the period selector.
type PeriodOption struct {
	Seconds int    `json:"seconds"`
	Label   string `json:"label"`
	Active  bool   `json:"active"`
}

var defaultOptions = []PeriodOption{
	{Seconds: 30, Label: "30 seconds"},
	{Seconds: 60, Label: "1 minute"},
	{Seconds: 300, Label: "5 minutes"},
	{Seconds: 600, Label: "10 minutes"},
}

// State is a point-in-time view of the controller.
type State struct {
	PeriodSeconds int     `json:"period_seconds"`
	Progress      float64 `json:"progress"`
	Running       bool    `json:"running"`
}

// Action is a user interaction with the refresh controls.
type Action interface{ isAction() }

// ActionRefresh asks for an immediate refresh.
type ActionRefresh struct{}

// ActionPeriod selects a new refresh period.
type ActionPeriod struct{ Seconds int }

func (ActionRefresh) isAction() {}
func (ActionPeriod) isAction()  {}

// Controller owns the single refresh timer of a dashboard. It is safe for
// concurrent use.
type Controller struct {
	// fire serializes callback invocations with resets so a cycle that
	// completes on a replaced timer never fires.
	fire      sync.Mutex
	mu        sync.Mutex
	period    int
	ticks     int
	running   bool
	gen       uint64 // identifies the live timer; stale timers see a different value
	ticker    Ticker
	stop      chan struct{}
	onRefresh func()
	options   []PeriodOption
	indicator Indicator
	log       *logger.Logger

	newTicker func(time.Duration) Ticker
}

// NewController returns an idle controller. indicator and log may be nil.
func NewController(indicator Indicator, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		period:    DefaultPeriod,
		onRefresh: func() {},
		options:   append([]PeriodOption(nil), defaultOptions...),
		indicator: indicator,
		log:       log,
		newTicker: newTimeTicker,
	}
	c.markActive(DefaultPeriod)
	return c
}

// Setup registers the refresh callback and starts counting down.
// onRefresh must not call back into the controller synchronously.
func (c *Controller) Setup(onRefresh func()) {
	c.mu.Lock()
	if onRefresh != nil {
		c.onRefresh = onRefresh
	}
	c.mu.Unlock()

	c.fire.Lock()
	defer c.fire.Unlock()
	c.reset()
}

// RefreshNow invokes the callback immediately and restarts the countdown.
func (c *Controller) RefreshNow() {
	c.fire.Lock()
	defer c.fire.Unlock()
	c.callback()()
	c.reset()
}

// SetPeriod changes the refresh period and restarts the countdown.
func (c *Controller) SetPeriod(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, seconds)
	}
	c.mu.Lock()
	c.period = seconds
	c.markActive(seconds)
	c.mu.Unlock()

	c.log.Infow("refresh_period_changed", "seconds", seconds)
	c.fire.Lock()
	defer c.fire.Unlock()
	c.reset()
	return nil
}

// HandleAction applies one user action.
func (c *Controller) HandleAction(a Action) error {
	switch a := a.(type) {
	case ActionRefresh:
		c.RefreshNow()
		return nil
	case ActionPeriod:
		return c.SetPeriod(a.Seconds)
	default:
		return fmt.Errorf("unsupported refresh action %T", a)
	}
}

// Listen applies actions until ctx is done or actions is closed. Invalid
// actions are logged and skipped.
func (c *Controller) Listen(ctx context.Context, actions <-chan Action) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-actions:
			if !ok {
				return
			}
			if err := c.HandleAction(a); err != nil {
				c.log.Errorw("refresh_action_failed", "err", err)
			}
		}
	}
}

// State reports the current period, progress and whether a timer runs.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{PeriodSeconds: c.period, Progress: c.progress(), Running: c.running}
}

// Options returns the period selector entries with the active one marked.
func (c *Controller) Options() []PeriodOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PeriodOption(nil), c.options...)
}

// Close stops the timer. The controller can be restarted with Setup.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// reset cancels any running timer, shows full progress and starts a new
// timer.
func (c *Controller) reset() {
	c.mu.Lock()
	c.stopLocked()
	c.ticks = 0
	c.running = true
	c.gen++
	gen := c.gen
	t := c.newTicker(tickInterval)
	stop := make(chan struct{})
	c.ticker, c.stop = t, stop
	c.show(fullProgress)
	c.mu.Unlock()

	go c.run(t, stop, gen)
}

func (c *Controller) stopLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		close(c.stop)
		c.ticker, c.stop = nil, nil
	}
	c.running = false
	c.gen++
}

func (c *Controller) run(t Ticker, stop <-chan struct{}, gen uint64) {
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if !c.tick(gen) {
				return
			}
		}
	}
}

// tick advances the countdown of timer gen. It reports false once that
// timer is no longer the live one.
func (c *Controller) tick(gen uint64) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.ticks++
	complete := c.ticks >= c.period
	if complete {
		c.ticks = 0
	}
	c.show(c.progress())
	c.mu.Unlock()

	if complete {
		c.fire.Lock()
		defer c.fire.Unlock()
		c.mu.Lock()
		live := gen == c.gen
		cb := c.onRefresh
		c.mu.Unlock()
		if !live {
			return false
		}
		cb()
	}
	return true
}

// progress is derived from the tick count so that a period of p seconds
// completes after exactly p ticks.
func (c *Controller) progress() float64 {
	return fullProgress * float64(c.period-c.ticks) / float64(c.period)
}

func (c *Controller) callback() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onRefresh
}

// show must be called with mu held so updates reach the indicator in order.
func (c *Controller) show(progress float64) {
	if c.indicator != nil {
		c.indicator.SetProgress(progress)
	}
}

func (c *Controller) markActive(seconds int) {
	for i := range c.options {
		c.options[i].Active = c.options[i].Seconds == seconds
	}
}
