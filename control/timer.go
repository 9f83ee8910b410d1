package control

import (
	"log/slog"
	"time"
)

// TimerState is the countdown state machine's state.
type TimerState uint8

const (
	// Counting means the relay is energized and the countdown runs.
	Counting TimerState = iota
	// TimerOff is the terminal de-energized state. It is never left
	// without a restart of the control process.
	TimerOff
)

// PowerTimer owns the relay output and counts down once per elapsed
// second. A positive freeze counter pauses the countdown without
// de-energizing the relay; the UI uses this to suppress decrements
// while the operator is adjusting, and as a grace window right after a
// (re)start.
type PowerTimer struct {
	relay     Switch
	state     TimerState
	remaining int
	freeze    int
	lastTick  time.Time
}

// NewPowerTimer creates the timer with the relay de-energized. Start
// must be called before the first Update, otherwise the zero remaining
// time reads as an immediate expiry.
func NewPowerTimer(relay Switch) *PowerTimer {
	relay.Set(false)
	return &PowerTimer{relay: relay}
}

// Start loads the countdown with seconds, cancels any freeze and
// energizes the relay.
func (t *PowerTimer) Start(seconds int, now time.Time) {
	t.remaining = seconds
	t.freeze = 0
	t.lastTick = now
	t.relay.Set(true)
	t.state = Counting
}

// Freeze pauses the countdown for the next seconds tick events. The
// relay stays energized.
func (t *PowerTimer) Freeze(seconds int) {
	t.freeze = seconds
}

func (t *PowerTimer) Remaining() int {
	return t.remaining
}

func (t *PowerTimer) State() TimerState {
	return t.state
}

// Update advances the countdown. It returns false once the timer has
// expired (or was already off); the loop then enters the terminal
// safe-off state.
func (t *PowerTimer) Update(now time.Time) bool {
	if t.state == TimerOff {
		return false
	}
	if t.remaining <= 0 {
		slog.Info("Countdown expired, de-energizing relay")
		t.relay.Set(false)
		t.state = TimerOff
		return false
	}
	if now.Sub(t.lastTick) >= time.Second {
		t.lastTick = now
		if t.freeze > 0 {
			t.freeze--
		} else {
			t.remaining--
		}
	}
	return true
}
