package platform

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"zeitschalt.net/powertimer/config"
	"zeitschalt.net/powertimer/control"
	"zeitschalt.net/powertimer/input"
	"zeitschalt.net/powertimer/logging"
)

// tapHold is how long a single keystroke keeps the simulated button
// pressed. Long enough to survive the debounce window, short enough
// not to read as a long press.
const tapHold = 150 * time.Millisecond

// TUIPlatform simulates the device in the terminal: the OLED content,
// the relay and indicator state, and keyboard-driven buttons.
type TUIPlatform struct {
	config       *config.Config
	tviewapp     *tview.Application
	intro        *tview.TextView
	deviceView   *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	readyChan    chan struct{}
	refreshStop  chan struct{}
	logFlushOnce sync.Once

	relay     *simOutput
	indicator *simOutput
	display   *simDisplay
	buttons   map[ButtonID]*simButton
	longHold  time.Duration
}

func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal) *TUIPlatform {
	longHold := time.Duration(conf.Input.LongPressMillis)*time.Millisecond + 500*time.Millisecond
	inst := &TUIPlatform{
		config:       conf,
		ossignalChan: ossignalchan,
		readyChan:    make(chan struct{}),
		refreshStop:  make(chan struct{}),
		relay:        &simOutput{name: "RELAY"},
		indicator:    &simOutput{name: "LED"},
		display:      &simDisplay{},
		longHold:     longHold,
		buttons: map[ButtonID]*simButton{
			ButtonPrimary: {},
			ButtonPlus:    {},
			ButtonMinus:   {},
			ButtonMode:    {},
		},
	}
	return inst
}

func (s *TUIPlatform) Relay() control.Switch          { return s.relay }
func (s *TUIPlatform) Indicator() control.Switch      { return s.indicator }
func (s *TUIPlatform) Display() control.DisplayDevice { return s.display }
func (s *TUIPlatform) Ready() <-chan struct{}         { return s.readyChan }

func (s *TUIPlatform) Sampler(id ButtonID) input.Sampler {
	return s.buttons[id].sample
}

func (s *TUIPlatform) Start() error {
	s.tviewapp = tview.NewApplication()

	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(introText())
	s.intro.SetBorder(true).SetTitle(" POWERTIMER Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	s.deviceView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.deviceView.SetBorder(true).SetTitle(" Device ")
	s.deviceView.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 6, 0, false).
		AddItem(s.deviceView, 7, 0, false).
		AddItem(s.logView, 0, 1, true)

	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logging.SetOutput(tview.ANSIWriter(s.logView))
			close(s.readyChan)
			go s.refreshLoop()
		})
	})

	s.tviewapp.SetInputCapture(s.handleKey)

	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			s.ossignalChan <- os.Interrupt
		}
	}()
	return nil
}

func (s *TUIPlatform) Stop() {
	close(s.refreshStop)
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

func introText() string {
	line1 := "Hit [blue]s[-] to switch preset, [blue]S[-] to hold for power-off"
	line2 := "Hit [blue]+[-]/[blue]-[-] to adjust time, [blue]i[-] to switch interval, [blue]I[-] to hold for save"
	line3 := "Hit [#ff0000]q[-] to exit"
	return fmt.Sprintf("%s\n%s\n%s", line1, line2, line3)
}

func (s *TUIPlatform) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		s.ossignalChan <- os.Interrupt
		return nil
	case tcell.KeyRune:
		now := time.Now()
		switch event.Rune() {
		case 'q', 'Q':
			s.ossignalChan <- os.Interrupt
			return nil
		case 's':
			s.buttons[ButtonPrimary].press(now.Add(tapHold))
			return nil
		case 'S':
			s.buttons[ButtonPrimary].press(now.Add(s.longHold))
			return nil
		case '+', '=':
			s.buttons[ButtonPlus].press(now.Add(tapHold))
			return nil
		case '-', '_':
			s.buttons[ButtonMinus].press(now.Add(tapHold))
			return nil
		case 'i':
			s.buttons[ButtonMode].press(now.Add(tapHold))
			return nil
		case 'I':
			s.buttons[ButtonMode].press(now.Add(s.longHold))
			return nil
		}
	case tcell.KeyUp:
		row, col := s.logView.GetScrollOffset()
		s.logView.ScrollTo(row-1, col)
		return nil
	case tcell.KeyDown:
		row, col := s.logView.GetScrollOffset()
		s.logView.ScrollTo(row+1, col)
		return nil
	}
	return event
}

// refreshLoop repaints the device pane at 10Hz. The control loop
// never touches tview directly; it only mutates the sim state.
func (s *TUIPlatform) refreshLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-s.refreshStop:
			return
		case <-ticker.C:
			text := s.renderDevice()
			s.tviewapp.QueueUpdateDraw(func() {
				s.deviceView.SetText(text)
			})
		}
	}
}

func (s *TUIPlatform) renderDevice() string {
	var buf strings.Builder
	buf.WriteString("\n")
	buf.WriteString(s.display.render())
	buf.WriteString("\n\n")
	buf.WriteString(s.relay.render())
	buf.WriteString("   ")
	buf.WriteString(s.indicator.render())
	return buf.String()
}

// simOutput is a binary output rendered into the status line.
type simOutput struct {
	mu   sync.Mutex
	name string
	on   bool
}

func (o *simOutput) Set(on bool) {
	o.mu.Lock()
	o.on = on
	o.mu.Unlock()
}

func (o *simOutput) render() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.on {
		return fmt.Sprintf("%s [green]● on[-]", o.name)
	}
	return fmt.Sprintf("%s [gray]○ off[-]", o.name)
}

// simButton keeps a queue of press windows; a keystroke pushes one,
// the sampler reports pressed while any window is still open.
type simButton struct {
	mu      sync.Mutex
	windows deque.Deque[time.Time]
}

func (b *simButton) press(until time.Time) {
	b.mu.Lock()
	b.windows.PushBack(until)
	b.mu.Unlock()
}

func (b *simButton) sample() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for b.windows.Len() > 0 && b.windows.Front().Before(now) {
		b.windows.PopFront()
	}
	return b.windows.Len() > 0
}

// simDisplay mimics the 128x32 OLED: draw calls paint into a pending
// buffer, SendBuffer publishes it atomically. The preset glyphs
// (U+2780 onward) render as-is in the terminal.
type simDisplay struct {
	mu      sync.Mutex
	pending []displayOp
	shown   []displayOp
}

type displayOp struct {
	font  control.Font
	text  string
	glyph rune
}

func (d *simDisplay) ClearBuffer() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

func (d *simDisplay) SetFont(f control.Font) {}

func (d *simDisplay) DrawStr(x, y int, text string) {
	d.mu.Lock()
	d.pending = append(d.pending, displayOp{font: control.FontTime, text: text})
	d.mu.Unlock()
}

func (d *simDisplay) DrawGlyph(x, y int, glyph rune) {
	d.mu.Lock()
	d.pending = append(d.pending, displayOp{font: control.FontSymbols, glyph: glyph})
	d.mu.Unlock()
}

func (d *simDisplay) SendBuffer() {
	d.mu.Lock()
	d.shown = make([]displayOp, len(d.pending))
	copy(d.shown, d.pending)
	d.mu.Unlock()
}

func (d *simDisplay) render() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var text, glyph string
	for _, op := range d.shown {
		if op.glyph != 0 {
			glyph = string(op.glyph)
		} else {
			text = op.text
		}
	}
	return fmt.Sprintf("[white:black:b] %-8s [::-]%s", text, glyph)
}
