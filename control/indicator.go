package control

import "time"

// IndicatorState is the status indicator's mode.
type IndicatorState uint8

const (
	IndicatorOff IndicatorState = iota
	IndicatorOn
	IndicatorBlink
)

// Indicator drives a status output either steady or blinking with a
// fixed half period.
type Indicator struct {
	out        Switch
	state      IndicatorState
	shining    bool
	halfPeriod time.Duration
	phase      time.Time
}

func NewIndicator(out Switch) *Indicator {
	out.Set(false)
	return &Indicator{out: out}
}

func (i *Indicator) On() {
	i.shining = true
	i.out.Set(true)
	i.state = IndicatorOn
}

func (i *Indicator) Off() {
	i.shining = false
	i.out.Set(false)
	i.state = IndicatorOff
}

// Blink turns the output on and toggles it every halfPeriod from now.
func (i *Indicator) Blink(halfPeriod time.Duration, now time.Time) {
	i.halfPeriod = halfPeriod
	i.phase = now
	i.shining = true
	i.out.Set(true)
	i.state = IndicatorBlink
}

func (i *Indicator) State() IndicatorState {
	return i.state
}

// Update toggles the output when the blink half period has elapsed. It
// has no effect in the steady states.
func (i *Indicator) Update(now time.Time) {
	if i.state != IndicatorBlink {
		return
	}
	if now.Sub(i.phase) > i.halfPeriod {
		i.phase = now
		i.shining = !i.shining
		i.out.Set(i.shining)
	}
}
