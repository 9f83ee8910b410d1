// Package platform abstracts the physical device (relay, indicator,
// buttons, OLED) away from the control loop, so the same loop runs on
// the real hardware and in the terminal simulator.
package platform

import (
	"zeitschalt.net/powertimer/control"
	"zeitschalt.net/powertimer/input"
)

// ButtonID names the four logical buttons of the device.
type ButtonID int

const (
	ButtonPrimary ButtonID = iota
	ButtonPlus
	ButtonMinus
	ButtonMode
)

// Platform provides the control loop's view of the hardware.
type Platform interface {
	// Start initializes the platform (opens GPIO/SPI, or starts the
	// TUI).
	Start() error

	// Stop cleans up all platform resources.
	Stop()

	// Relay returns the switched power output.
	Relay() control.Switch

	// Indicator returns the status LED output.
	Indicator() control.Switch

	// Display returns the retained-buffer display device.
	Display() control.DisplayDevice

	// Sampler returns the raw level source for one button.
	Sampler(id ButtonID) input.Sampler

	// Ready returns a channel that closes once the platform is fully
	// up (the TUI uses this to gate log output).
	Ready() <-chan struct{}
}
