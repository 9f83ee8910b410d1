// Package rpi runs the timed power switch on Raspberry Pi hardware:
// relay and indicator on GPIO outputs, four buttons on pulled-up
// inputs, and the SSD1306 OLED on the SPI bus.
package rpi

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"zeitschalt.net/powertimer/config"
	"zeitschalt.net/powertimer/control"
	"zeitschalt.net/powertimer/input"
	"zeitschalt.net/powertimer/platform"
)

type RaspberryPiPlatform struct {
	config    *config.Config
	spiMutex  sync.Mutex
	relay     *outPin
	indicator *outPin
	buttons   map[platform.ButtonID]rpio.Pin
	display   *SSD1306
	dcPin     rpio.Pin
	resetPin  rpio.Pin
	readyChan chan struct{}
}

func NewPlatform(conf *config.Config) *RaspberryPiPlatform {
	return &RaspberryPiPlatform{
		config:    conf,
		readyChan: make(chan struct{}),
	}
}

func (p *RaspberryPiPlatform) Start() error {
	slog.Info("Initialise GPIO and SPI...")
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open rpio: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		return fmt.Errorf("failed to begin spi: %w", err)
	}

	hw := p.config.Hardware
	freq := hw.Display.SPIFrequency
	if freq <= 0 {
		freq = 8_000_000
	}
	rpio.SpiSpeed(freq)

	p.relay = newOutPin(hw.Relay)
	p.indicator = newOutPin(hw.Indicator)

	p.buttons = make(map[platform.ButtonID]rpio.Pin, 4)
	for id, pin := range map[platform.ButtonID]int{
		platform.ButtonPrimary: hw.Buttons.Primary,
		platform.ButtonPlus:    hw.Buttons.Plus,
		platform.ButtonMinus:   hw.Buttons.Minus,
		platform.ButtonMode:    hw.Buttons.Mode,
	} {
		rpiopin := rpio.Pin(pin)
		rpiopin.Input()
		rpiopin.PullUp()
		p.buttons[id] = rpiopin
	}

	p.dcPin = rpio.Pin(hw.Display.DCPin)
	p.dcPin.Output()
	p.resetPin = rpio.Pin(hw.Display.ResetPin)
	p.resetPin.Output()
	p.resetDisplay()

	p.display = newSSD1306(p.spiTransmit)
	p.display.Init()

	close(p.readyChan)
	return nil
}

func (p *RaspberryPiPlatform) Stop() {
	// Leave the relay de-energized, whatever state the loop was in.
	if p.relay != nil {
		p.relay.Set(false)
	}
	rpio.SpiEnd(rpio.Spi0)
	if err := rpio.Close(); err != nil {
		slog.Error("Error closing rpio", "error", err)
	}
}

func (p *RaspberryPiPlatform) Relay() control.Switch          { return p.relay }
func (p *RaspberryPiPlatform) Indicator() control.Switch      { return p.indicator }
func (p *RaspberryPiPlatform) Display() control.DisplayDevice { return p.display }
func (p *RaspberryPiPlatform) Ready() <-chan struct{}         { return p.readyChan }

// Sampler reads the pulled-up input: pressed shorts the pin to ground.
func (p *RaspberryPiPlatform) Sampler(id platform.ButtonID) input.Sampler {
	pin := p.buttons[id]
	return func() bool {
		return pin.Read() == rpio.Low
	}
}

// resetDisplay strobes the controller reset line per datasheet timing.
func (p *RaspberryPiPlatform) resetDisplay() {
	p.resetPin.High()
	time.Sleep(time.Millisecond)
	p.resetPin.Low()
	time.Sleep(10 * time.Millisecond)
	p.resetPin.High()
	time.Sleep(10 * time.Millisecond)
}

// spiTransmit drives the DC line and pushes payload over SPI. The
// mutex keeps command/data pairs from interleaving.
func (p *RaspberryPiPlatform) spiTransmit(payload []byte, data bool) {
	p.spiMutex.Lock()
	defer p.spiMutex.Unlock()

	if data {
		p.dcPin.High()
	} else {
		p.dcPin.Low()
	}
	rpio.SpiTransmit(payload...)
}

// outPin drives a GPIO output with configurable polarity.
type outPin struct {
	pin        rpio.Pin
	activeHigh bool
}

func newOutPin(cfg config.OutputPinConfig) *outPin {
	o := &outPin{pin: rpio.Pin(cfg.Pin), activeHigh: cfg.ActiveHigh}
	o.pin.Output()
	o.Set(false)
	return o
}

func (o *outPin) Set(on bool) {
	if on == o.activeHigh {
		o.pin.High()
	} else {
		o.pin.Low()
	}
}
