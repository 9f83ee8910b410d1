package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeitschalt.net/powertimer/nvram"
	"zeitschalt.net/powertimer/persist"
	"zeitschalt.net/powertimer/store"
	"zeitschalt.net/powertimer/watchdog"
)

type loopFixture struct {
	t      *testing.T
	loop   *Loop
	relay  *fakeSwitch
	ind    *fakeSwitch
	dev    *fakeDisplay
	levels map[string]*fakeLevel
	now    time.Time
}

// newLoopFixture builds a loop over fake devices. When presets is
// non-nil they are saved to storage first so Startup loads them
// cleanly; a nil presets leaves the storage blank, which fails the
// checksum.
func newLoopFixture(t *testing.T, presets []int, index int) *loopFixture {
	t.Helper()

	mem := nvram.NewMem(persist.ImageSize(4))
	mgr := persist.NewManager(mem)
	if presets != nil {
		s := store.NewIndexed[int](4)
		require.True(t, s.SetValues(presets))
		require.True(t, s.SetIndex(index))
		require.NoError(t, mgr.Save(s))
	}

	buttons, levels := newFakeButtons()
	f := &loopFixture{
		t:      t,
		relay:  &fakeSwitch{},
		ind:    &fakeSwitch{},
		dev:    &fakeDisplay{},
		levels: levels,
		now:    time.Unix(1000, 0),
	}
	params := Params{
		SecureStartSeconds: 1,
		MessageDuration:    time.Millisecond,
	}
	f.loop = NewLoop(params, f.relay, f.ind, f.dev, buttons, mgr,
		watchdog.Noop{}, make(chan struct{}))
	require.NoError(t, f.loop.Startup(f.now))
	return f
}

// run advances simulated time in 10ms passes. It returns true as soon
// as a pass requests the terminal safe-off state.
func (f *loopFixture) run(d time.Duration) bool {
	for elapsed := time.Duration(0); elapsed < d; elapsed += 10 * time.Millisecond {
		f.now = f.now.Add(10 * time.Millisecond)
		if !f.loop.pass(f.now) {
			return true
		}
	}
	return false
}

func (f *loopFixture) click(name string) {
	f.levels[name].pressed = true
	f.run(50 * time.Millisecond)
	f.levels[name].pressed = false
	f.run(50 * time.Millisecond)
}

func TestLoop_StartupFromStoredPresets(t *testing.T) {
	f := newLoopFixture(t, []int{60, 300, 600, 1800}, 1)

	assert.Equal(t, 300, f.loop.Remaining(), "countdown starts at the stored preset")
	assert.Equal(t, 1, f.loop.PresetIndex())
	assert.True(t, f.relay.on)
	assert.Equal(t, IndicatorBlink, f.loop.indicator.State())
}

func TestLoop_StartupWithCorruptSettings(t *testing.T) {
	f := newLoopFixture(t, nil, 0)

	assert.Equal(t, []int{60, 300, 600, 1800}, f.loop.presets.Values(),
		"factory defaults restored on checksum mismatch")
	assert.Equal(t, 0, f.loop.PresetIndex())

	assert.Contains(t, f.dev.sent, []string{"ERROR"},
		"error surfaced before startup proceeds")
	assert.Equal(t, 60, f.loop.Remaining())
	assert.True(t, f.relay.on)
}

func TestLoop_PrimaryClickAdvancesPresetCyclically(t *testing.T) {
	f := newLoopFixture(t, []int{60, 300, 600, 1800}, 0)

	f.click("primary")
	f.click("primary")

	assert.Equal(t, 2, f.loop.PresetIndex())
	assert.Equal(t, 600, f.loop.Remaining(), "countdown restarted at the new preset")
	assert.True(t, f.relay.on)

	// Two more clicks wrap around to index 0.
	f.click("primary")
	f.click("primary")
	assert.Equal(t, 0, f.loop.PresetIndex())
	assert.Equal(t, 60, f.loop.Remaining())
}

func TestLoop_PlusRoundsUpToNextIntervalMultiple(t *testing.T) {
	f := newLoopFixture(t, []int{125, 300, 600, 1800}, 0)

	f.click("plus")
	assert.Equal(t, 180, f.loop.Remaining(),
		"125s rounds up to the next multiple of 1min")

	f.click("plus")
	assert.Equal(t, 240, f.loop.Remaining())
}

func TestLoop_PlusClampsAtUpperBound(t *testing.T) {
	f := newLoopFixture(t, []int{5395, 300, 600, 1800}, 0)

	f.click("plus")
	assert.Equal(t, 5400, f.loop.Remaining())

	f.click("plus")
	assert.Equal(t, 5400, f.loop.Remaining(), "clamped at 90 minutes")
}

func TestLoop_MinusRoundsDownToPreviousMultiple(t *testing.T) {
	f := newLoopFixture(t, []int{125, 300, 600, 1800}, 0)

	f.click("minus")
	assert.Equal(t, 120, f.loop.Remaining(),
		"125s rounds down to the previous multiple of 1min")

	f.click("minus")
	assert.Equal(t, 60, f.loop.Remaining(),
		"an exact multiple steps down a full interval")
}

func TestLoop_MinusRejectsResultAtOrBelowZero(t *testing.T) {
	f := newLoopFixture(t, []int{30, 300, 600, 1800}, 0)

	f.click("minus")
	assert.Equal(t, 30, f.loop.Remaining(), "rejected adjustment leaves time unchanged")
	assert.True(t, f.relay.on)
}

func TestLoop_ModeClickSwitchesInterval(t *testing.T) {
	f := newLoopFixture(t, []int{600, 300, 600, 1800}, 0)

	assert.Equal(t, 1, f.loop.IntervalMinutes())
	f.click("mode")
	assert.Equal(t, 5, f.loop.IntervalMinutes())

	assert.Contains(t, f.dev.sent, []string{"+5 min"})

	// Now plus steps in 5min units: 600 -> 900.
	f.click("plus")
	assert.Equal(t, 900, f.loop.Remaining())

	f.click("mode")
	assert.Equal(t, 1, f.loop.IntervalMinutes(), "interval store wraps around")
}

func TestLoop_ModeClickIgnoredWhilePrimaryHeld(t *testing.T) {
	f := newLoopFixture(t, []int{600, 300, 600, 1800}, 0)

	f.levels["primary"].pressed = true
	f.run(100 * time.Millisecond)
	f.click("mode")
	f.levels["primary"].pressed = false
	f.run(100 * time.Millisecond)

	assert.Equal(t, 1, f.loop.IntervalMinutes(),
		"mode click must not fire while primary is held")
}

func TestLoop_ModeLongPressSavesPresets(t *testing.T) {
	f := newLoopFixture(t, []int{125, 300, 600, 1800}, 0)

	f.click("plus") // 180s
	f.levels["mode"].pressed = true
	f.run(2200 * time.Millisecond)
	f.levels["mode"].pressed = false
	f.run(100 * time.Millisecond)

	assert.Contains(t, f.dev.sent, []string{"SAVED"})

	// The live remaining time was written into the current slot and
	// persisted; a fresh load sees it.
	loaded := store.NewIndexed[int](4)
	ok, err := f.loop.settings.Load(loaded)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 180, loaded.At(0), 3,
		"persisted value tracks the live countdown")
}

func TestLoop_PrimaryLongPressTriggersSafeOff(t *testing.T) {
	f := newLoopFixture(t, []int{600, 300, 600, 1800}, 0)

	// Latch arms once the button has been seen released.
	f.run(100 * time.Millisecond)

	f.levels["primary"].pressed = true
	terminated := f.run(2500 * time.Millisecond)

	assert.True(t, terminated, "long press must end the loop")
	assert.Contains(t, f.dev.sent, []string{"OFF"})
}

func TestLoop_LongPressIgnoredWhenLatchUnarmed(t *testing.T) {
	f := newLoopFixture(t, []int{600, 300, 600, 1800}, 0)

	// Held from the very first pass: the latch never arms, so the long
	// press must not power off.
	f.levels["primary"].pressed = true
	terminated := f.run(3 * time.Second)

	assert.False(t, terminated)
	assert.True(t, f.relay.on)
}

func TestLoop_CountdownExpiryEntersSafeOff(t *testing.T) {
	f := newLoopFixture(t, []int{2, 300, 600, 1800}, 0)

	// 1s secure-start freeze plus 2s countdown.
	terminated := f.run(4 * time.Second)

	assert.True(t, terminated)
	assert.False(t, f.relay.on, "relay de-energized on expiry")
	assert.Equal(t, TimerOff, f.loop.timer.State())
}

func TestLoop_SecureStartFreezeDelaysFirstDecrement(t *testing.T) {
	f := newLoopFixture(t, []int{60, 300, 600, 1800}, 0)

	f.run(time.Second)
	assert.Equal(t, 60, f.loop.Remaining(),
		"first tick is absorbed by the secure-start freeze")

	f.run(time.Second)
	assert.Equal(t, 59, f.loop.Remaining())
}
