// Package control implements the runtime logic of the timed power
// switch: the countdown state machine, the status indicator, the
// display controller and the button-driven dispatch loop. All
// components are owned by a single cooperative loop; their Update
// methods take the current wall-clock time and never block.
package control

// Switch drives a binary output such as the relay or the indicator
// LED. Implementations handle polarity themselves.
type Switch interface {
	Set(on bool)
}

// Font selects one of the display's builtin fonts.
type Font uint8

const (
	// FontTime is the large font used for the MM:SS countdown and
	// status messages.
	FontTime Font = iota
	// FontSymbols carries the circled-digit glyphs marking the active
	// preset.
	FontSymbols
)

// DisplayDevice is a retained-buffer bitmap display. Draw calls paint
// into the buffer; SendBuffer transmits it atomically.
type DisplayDevice interface {
	ClearBuffer()
	SetFont(f Font)
	DrawStr(x, y int, text string)
	DrawGlyph(x, y int, glyph rune)
	SendBuffer()
}

// StateProvider is the pull-based view of the loop state the display
// controller renders from.
type StateProvider interface {
	// Remaining returns the countdown's remaining seconds.
	Remaining() int
	// PresetIndex returns the zero-based index of the active preset.
	PresetIndex() int
	// IntervalMinutes returns the active plus/minus step in minutes.
	IntervalMinutes() int
}
