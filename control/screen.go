package control

import (
	"fmt"
	"time"

	"zeitschalt.net/powertimer/watchdog"
)

// DefaultRepaintInterval is the minimum time between two periodic
// repaints of the time screen.
const DefaultRepaintInterval = 200 * time.Millisecond

// presetGlyphBase is the codepoint of the negative circled digit one;
// the 1-based preset number is added to it.
const presetGlyphBase = 0x277F

// Screen renders the loop state onto the display device. The normal
// view shows the countdown and the active preset; a transient message
// overrides it for a bounded duration. Periodic repaints are rate
// limited, direct Show calls are not (they are immediate feedback on a
// button press).
type Screen struct {
	dev        DisplayDevice
	state      StateProvider
	minRepaint time.Duration

	lastPaint      time.Time
	transient      bool
	transientUntil time.Time
}

func NewScreen(dev DisplayDevice, state StateProvider, minRepaint time.Duration) *Screen {
	if minRepaint <= 0 {
		minRepaint = DefaultRepaintInterval
	}
	return &Screen{dev: dev, state: state, minRepaint: minRepaint}
}

// ShowTime paints the countdown as MM:SS plus the preset glyph,
// immediately.
func (s *Screen) ShowTime(now time.Time) {
	s.lastPaint = now

	rem := s.state.Remaining()
	if rem < 0 {
		rem = 0
	}
	text := fmt.Sprintf("%02d:%02d", rem/60, rem%60)

	s.dev.ClearBuffer()
	s.dev.SetFont(FontTime)
	s.dev.DrawStr(5, 30, text)
	s.dev.SetFont(FontSymbols)
	s.dev.DrawGlyph(112, 15, rune(presetGlyphBase+s.state.PresetIndex()+1))
	s.dev.SendBuffer()
}

// ShowInterval paints the active plus/minus step as "+N min".
func (s *Screen) ShowInterval(now time.Time) {
	s.lastPaint = now
	s.paintText(fmt.Sprintf("+%d min", s.state.IntervalMinutes()))
}

// ShowText paints a short status message.
func (s *Screen) ShowText(text string, now time.Time) {
	s.lastPaint = now
	s.paintText(text)
}

func (s *Screen) paintText(text string) {
	s.dev.ClearBuffer()
	s.dev.SetFont(FontTime)
	s.dev.DrawStr(5, 30, text)
	s.dev.SendBuffer()
}

// Freeze switches to transient mode for d. The next Update after
// expiry reverts to the time screen.
func (s *Screen) Freeze(d time.Duration, now time.Time) {
	s.transient = true
	s.transientUntil = now.Add(d)
}

// Frozen reports whether a transient message is still active.
func (s *Screen) Frozen() bool {
	return s.transient
}

// Update repaints the time screen at most once per minRepaint. While a
// transient message is active it paints nothing until the message
// duration has elapsed.
func (s *Screen) Update(now time.Time) {
	if now.Sub(s.lastPaint) < s.minRepaint {
		return
	}
	if s.transient {
		if now.Before(s.transientUntil) {
			return
		}
		s.transient = false
	}
	s.ShowTime(now)
}

// WaitFreeze blocks until the transient message has been shown for its
// full duration, feeding the watchdog while waiting. Used when a
// message must be guaranteed on screen before proceeding, e.g. ahead
// of the power-off sequence.
func (s *Screen) WaitFreeze(wd watchdog.Watchdog) {
	for s.transient {
		wd.Feed()
		time.Sleep(10 * time.Millisecond)
		s.Update(time.Now())
	}
}
