package control

import (
	"log/slog"
	"time"

	"zeitschalt.net/powertimer/input"
	"zeitschalt.net/powertimer/persist"
	"zeitschalt.net/powertimer/store"
	"zeitschalt.net/powertimer/watchdog"
)

// Params carries the tunable loop behavior. Zero values fall back to
// the device defaults.
type Params struct {
	// FactoryPresets are the preset seconds restored when the stored
	// settings fail validation.
	FactoryPresets []int
	// Intervals are the plus/minus steps in minutes.
	Intervals []int
	// MaxSeconds is the upper clamp for the plus adjustment.
	MaxSeconds int
	// SecureStartSeconds is the freeze applied after boot, preset
	// switches and plus/minus adjustments.
	SecureStartSeconds int
	// MessageDuration is how long transient messages stay on screen.
	MessageDuration time.Duration
	// RepaintInterval is the minimum time between periodic repaints.
	RepaintInterval time.Duration
	// PassDelay is the idle time between loop passes.
	PassDelay time.Duration
}

func (p *Params) applyDefaults() {
	if len(p.FactoryPresets) == 0 {
		p.FactoryPresets = []int{60, 300, 600, 1800}
	}
	if len(p.Intervals) == 0 {
		p.Intervals = []int{1, 5}
	}
	if p.MaxSeconds <= 0 {
		p.MaxSeconds = 90 * 60
	}
	if p.SecureStartSeconds <= 0 {
		p.SecureStartSeconds = 5
	}
	if p.MessageDuration <= 0 {
		p.MessageDuration = 2 * time.Second
	}
	if p.RepaintInterval <= 0 {
		p.RepaintInterval = DefaultRepaintInterval
	}
	if p.PassDelay <= 0 {
		p.PassDelay = 10 * time.Millisecond
	}
}

// Buttons are the four logical inputs of the device.
type Buttons struct {
	Primary *input.Button
	Plus    *input.Button
	Minus   *input.Button
	Mode    *input.Button
}

func (b *Buttons) update(now time.Time) {
	b.Primary.Update(now)
	b.Plus.Update(now)
	b.Minus.Update(now)
	b.Mode.Update(now)
}

// Loop is the single-threaded cooperative control loop. It owns all
// components exclusively; per pass it dispatches at most one button
// action, then advances every component and feeds the watchdog.
type Loop struct {
	params    Params
	presets   *store.Indexed[int]
	intervals *store.Indexed[int]
	timer     *PowerTimer
	indicator *Indicator
	screen    *Screen
	buttons   *Buttons
	relay     Switch
	settings  *persist.Manager
	wd        watchdog.Watchdog
	stop      <-chan struct{}

	// offReady arms the long-press power-off. It requires a full
	// primary release after boot or after a preset switch, so a held
	// or bouncing button cannot kill the output unintentionally.
	offReady     bool
	offRequested bool
}

// NewLoop wires the components together. The relay is the same output
// the PowerTimer owns; the loop needs it directly for the terminal
// safe-off assertion.
func NewLoop(params Params, relay, indicatorOut Switch, dev DisplayDevice,
	buttons *Buttons, settings *persist.Manager, wd watchdog.Watchdog,
	stop <-chan struct{},
) *Loop {
	params.applyDefaults()

	l := &Loop{
		params:    params,
		presets:   store.NewIndexed[int](len(params.FactoryPresets)),
		intervals: store.NewIndexed[int](len(params.Intervals)),
		timer:     NewPowerTimer(relay),
		indicator: NewIndicator(indicatorOut),
		buttons:   buttons,
		relay:     relay,
		settings:  settings,
		wd:        wd,
		stop:      stop,
	}
	l.presets.SetValues(params.FactoryPresets)
	l.intervals.SetValues(params.Intervals)
	l.screen = NewScreen(dev, l, params.RepaintInterval)
	return l
}

// StateProvider for the screen.

func (l *Loop) Remaining() int       { return l.timer.Remaining() }
func (l *Loop) PresetIndex() int     { return l.presets.Index() }
func (l *Loop) IntervalMinutes() int { return l.intervals.Current() }

// Startup loads the persisted presets and starts the countdown at the
// current preset with a secure-start freeze. A checksum mismatch
// resets the store to factory defaults and blocks on an error message
// so the operator sees the condition before the device starts
// counting.
func (l *Loop) Startup(now time.Time) error {
	ok, err := l.settings.Load(l.presets)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("Stored settings failed validation, restoring factory presets")
		l.presets.SetValues(l.params.FactoryPresets)
		l.presets.SetIndex(0)
		l.screen.ShowText("ERROR", now)
		l.screen.Freeze(l.params.MessageDuration, now)
		l.screen.WaitFreeze(l.wd)
	}

	l.indicator.Blink(500*time.Millisecond, now)
	l.timer.Start(l.presets.Current(), now)
	l.timer.Freeze(l.params.SecureStartSeconds)
	l.screen.ShowTime(now)
	slog.Info("Control loop started",
		"preset", l.presets.Index(), "seconds", l.presets.Current())
	return nil
}

// Run executes the cooperative loop until the timer expires, a
// power-off is requested, or the stop channel closes. Expiry and
// power-off end in the terminal safe-off state, which only the stop
// channel can leave.
func (l *Loop) Run() {
	ticker := time.NewTicker(l.params.PassDelay)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			if !l.pass(now) {
				l.safeOff()
				return
			}
		}
	}
}

// pass is one iteration of the loop: dispatch at most one action, then
// update every component and feed the watchdog. It returns false when
// the loop must enter the terminal safe-off state.
func (l *Loop) pass(now time.Time) bool {
	l.dispatch(now)
	if l.offRequested {
		return false
	}

	alive := l.timer.Update(now)

	l.buttons.update(now)
	// Re-arm the power-off latch only while the primary button is
	// fully released.
	if l.buttons.Primary.Released() {
		l.offReady = true
	}
	l.indicator.Update(now)
	l.screen.Update(now)
	l.wd.Feed()
	return alive
}

// dispatch applies at most one button action per pass, first match
// wins. The precedence order is part of the device's UX contract and
// must not be rearranged.
func (l *Loop) dispatch(now time.Time) {
	freeze := l.params.SecureStartSeconds
	switch {
	case l.buttons.Primary.Clicked():
		l.presets.Advance(true, true)
		l.offReady = false
		l.timer.Start(l.presets.Current(), now)
		l.timer.Freeze(freeze)
		l.screen.ShowTime(now)
		slog.Info("Preset switched",
			"preset", l.presets.Index(), "seconds", l.presets.Current())

	case l.buttons.Primary.LongPressed():
		if !l.offReady {
			return
		}
		slog.Info("Power-off requested")
		l.screen.ShowText("OFF", now)
		l.screen.Freeze(l.params.MessageDuration, now)
		l.screen.WaitFreeze(l.wd)
		l.offRequested = true

	case l.buttons.Plus.PressedEdge():
		step := l.intervals.Current() * 60
		t := (l.timer.Remaining()/step + 1) * step
		if t > l.params.MaxSeconds {
			t = l.params.MaxSeconds
		}
		l.timer.Start(t, now)
		l.timer.Freeze(freeze)
		l.screen.ShowTime(now)

	case l.buttons.Minus.PressedEdge():
		step := l.intervals.Current() * 60
		rem := l.timer.Remaining()
		t := rem - rem%step
		if t == rem {
			t = rem - step
		}
		if t <= 0 {
			return
		}
		l.timer.Start(t, now)
		l.timer.Freeze(freeze)
		l.screen.ShowTime(now)

	case l.buttons.Mode.Clicked() && !l.buttons.Primary.Pressed():
		l.intervals.Advance(true, true)
		l.screen.ShowInterval(now)
		l.screen.Freeze(l.params.MessageDuration, now)
		l.timer.Freeze(freeze)
		slog.Info("Interval switched", "minutes", l.intervals.Current())

	case l.buttons.Mode.LongPressed():
		l.presets.SetCurrent(l.timer.Remaining())
		if err := l.settings.Save(l.presets); err != nil {
			slog.Error("Failed to persist presets", "error", err)
			l.screen.ShowText("ERROR", now)
		} else {
			slog.Info("Presets persisted",
				"preset", l.presets.Index(), "seconds", l.presets.Current())
			l.screen.ShowText("SAVED", now)
		}
		l.screen.Freeze(l.params.MessageDuration, now)
		l.timer.Freeze(freeze)
	}
}

// safeOff is the terminal power-off state: it re-asserts the
// de-energized output and feeds the watchdog forever. No software
// fault can re-energize the relay from here; only the platform stop
// channel (used by the simulator) ends the loop.
func (l *Loop) safeOff() {
	slog.Info("Entering terminal safe-off state")
	l.indicator.Off()
	for {
		l.relay.Set(false)
		l.wd.Feed()
		select {
		case <-l.stop:
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}
