package control

import (
	"fmt"
	"time"

	"zeitschalt.net/powertimer/input"
)

// fakeSwitch records the level history of a binary output.
type fakeSwitch struct {
	on      bool
	history []bool
}

func (f *fakeSwitch) Set(on bool) {
	f.on = on
	f.history = append(f.history, on)
}

// fakeDisplay records what gets painted. Every SendBuffer snapshots the
// draw calls since the last ClearBuffer.
type fakeDisplay struct {
	current []string
	sent    [][]string
}

func (f *fakeDisplay) ClearBuffer()   { f.current = nil }
func (f *fakeDisplay) SetFont(_ Font) {}

func (f *fakeDisplay) DrawStr(x, y int, text string) {
	f.current = append(f.current, text)
}

func (f *fakeDisplay) DrawGlyph(x, y int, glyph rune) {
	f.current = append(f.current, fmt.Sprintf("glyph:%04X", glyph))
}

func (f *fakeDisplay) SendBuffer() {
	snapshot := make([]string, len(f.current))
	copy(snapshot, f.current)
	f.sent = append(f.sent, snapshot)
}

func (f *fakeDisplay) paintCount() int {
	return len(f.sent)
}

func (f *fakeDisplay) lastPainted() []string {
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// fakeState is a canned StateProvider for Screen tests.
type fakeState struct {
	remaining int
	preset    int
	interval  int
}

func (f *fakeState) Remaining() int       { return f.remaining }
func (f *fakeState) PresetIndex() int     { return f.preset }
func (f *fakeState) IntervalMinutes() int { return f.interval }

// fakeLevel drives a button sampler from the test.
type fakeLevel struct {
	pressed bool
}

func (f *fakeLevel) sample() bool { return f.pressed }

func newFakeButtons() (*Buttons, map[string]*fakeLevel) {
	levels := map[string]*fakeLevel{
		"primary": {}, "plus": {}, "minus": {}, "mode": {},
	}
	debounce := 20 * time.Millisecond
	long := 2 * time.Second
	return &Buttons{
		Primary: input.NewButton(levels["primary"].sample, debounce, long),
		Plus:    input.NewButton(levels["plus"].sample, debounce, long),
		Minus:   input.NewButton(levels["minus"].sample, debounce, long),
		Mode:    input.NewButton(levels["mode"].sample, debounce, long),
	}, levels
}
