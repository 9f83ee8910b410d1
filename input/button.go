// Package input turns raw GPIO levels into debounced button events.
// Each Button is polled once per control-loop pass; the loop consumes
// at most one event kind per pass, so events latch until read.
package input

import "time"

const (
	DefaultDebounce  = 30 * time.Millisecond
	DefaultLongPress = 2000 * time.Millisecond
)

// Sampler reports the current raw (already level-converted) state of a
// physical button: true while pressed.
type Sampler func() bool

// Button debounces a sampler and derives press-edge, short-click and
// long-press events. Events fire once and stay latched until the
// corresponding accessor consumes them.
type Button struct {
	sample    Sampler
	debounce  time.Duration
	longPress time.Duration

	raw      bool
	rawSince time.Time
	stable   bool

	pressedAt time.Time
	longDone  bool

	pressEdge bool
	clicked   bool
	long      bool
}

func NewButton(sample Sampler, debounce, longPress time.Duration) *Button {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	return &Button{
		sample:    sample,
		debounce:  debounce,
		longPress: longPress,
	}
}

// Update advances the debounce and event state. Must be called once per
// loop pass.
func (b *Button) Update(now time.Time) {
	s := b.sample()
	if s != b.raw {
		b.raw = s
		b.rawSince = now
	}

	if b.raw != b.stable && now.Sub(b.rawSince) >= b.debounce {
		b.stable = b.raw
		if b.stable {
			b.pressEdge = true
			b.pressedAt = now
			b.longDone = false
		} else if !b.longDone {
			// A release after a long press is not a click.
			b.clicked = true
		}
	}

	if b.stable && !b.longDone && now.Sub(b.pressedAt) >= b.longPress {
		b.long = true
		b.longDone = true
	}
}

// Pressed reports the debounced level.
func (b *Button) Pressed() bool {
	return b.stable
}

// Released reports that the button is fully released: neither the
// debounced level nor the raw sample is active. Used for latches that
// must not arm while the button is physically held.
func (b *Button) Released() bool {
	return !b.stable && !b.raw
}

// PressedEdge fires once per press edge. Used for the repeatable
// plus/minus actions.
func (b *Button) PressedEdge() bool {
	v := b.pressEdge
	b.pressEdge = false
	return v
}

// Clicked fires once per completed press-release cycle shorter than the
// long-press threshold.
func (b *Button) Clicked() bool {
	v := b.clicked
	b.clicked = false
	return v
}

// LongPressed fires once when the button has been held past the
// long-press threshold.
func (b *Button) LongPressed() bool {
	v := b.long
	b.long = false
	return v
}
