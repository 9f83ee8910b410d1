// Package watchdog abstracts the external watchdog the control loop
// must feed. Failing to feed within the timeout forces a restart; the
// terminal power-off path deliberately relies on this as its final
// guarantee.
package watchdog

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watchdog is fed once per control-loop pass and during the two
// intentional busy-waits (terminal off, blocking message display).
type Watchdog interface {
	Feed()
}

// Noop is used in tests and when no watchdog is configured.
type Noop struct{}

func (Noop) Feed() {}

// Device feeds a Linux watchdog device file (typically /dev/watchdog).
// Every write, whatever the content, resets the hardware timer.
type Device struct {
	f *os.File
}

func OpenDevice(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open watchdog device %s: %w", path, err)
	}
	return &Device{f: f}, nil
}

func (d *Device) Feed() {
	if _, err := d.f.Write([]byte{0}); err != nil {
		slog.Error("Failed to feed watchdog device", "error", err)
	}
}

func (d *Device) Close() error {
	return d.f.Close()
}

// Soft is the hosted substitute for an external watchdog: a timer that
// terminates the process if Feed is not called within the timeout. Like
// the hardware part, the resulting restart is uncontrolled (the process
// exits non-zero and is expected to be supervised).
type Soft struct {
	mu      sync.Mutex
	timer   *time.Timer
	timeout time.Duration
	expire  func()
}

func NewSoft(timeout time.Duration) *Soft {
	w := &Soft{
		timeout: timeout,
		expire: func() {
			slog.Error("Watchdog starved, terminating", "timeout", timeout)
			os.Exit(3)
		},
	}
	w.timer = time.AfterFunc(timeout, func() { w.fire() })
	return w
}

func (w *Soft) fire() {
	w.mu.Lock()
	expire := w.expire
	w.mu.Unlock()
	expire()
}

func (w *Soft) Feed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timer.Reset(w.timeout)
}

// Stop disarms the watchdog. Only the platform shutdown path uses this;
// the embedded equivalent has no disarm.
func (w *Soft) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timer.Stop()
}
