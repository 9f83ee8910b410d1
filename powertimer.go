package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zeitschalt.net/powertimer/config"
	"zeitschalt.net/powertimer/control"
	"zeitschalt.net/powertimer/input"
	"zeitschalt.net/powertimer/logging"
	"zeitschalt.net/powertimer/nvram"
	"zeitschalt.net/powertimer/persist"
	"zeitschalt.net/powertimer/platform"
	"zeitschalt.net/powertimer/rpi"
	"zeitschalt.net/powertimer/watchdog"
)

// defaultStoragePath is used in the simulation when no storage file is
// configured. On real hardware the path is mandatory.
const defaultStoragePath = "powertimer-settings.bin"

// App owns the platform, the settings storage and the control loop,
// and runs the shutdown sequence in the right order.
type App struct {
	config     *config.Config
	platform   platform.Platform
	storage    *nvram.File
	wd         watchdog.Watchdog
	loop       *control.Loop
	ossignal   chan os.Signal
	stopsignal chan struct{}
}

func NewApp(ossignal chan os.Signal) *App {
	return &App{
		ossignal:   ossignal,
		stopsignal: make(chan struct{}),
	}
}

func main() {
	cfile := flag.String("config", config.CONFILE, "Path to the config file")
	realhw := flag.Bool("real", false, "Set to true if the program runs on the real hardware")
	flag.Parse()

	conf, err := config.ReadConfig(*cfile, *realhw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// The simulation owns the terminal, so logs are buffered until its
	// log pane is up.
	if err := logging.Init(conf.Logging, !conf.RealHW); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logging.Close()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM)

	app := NewApp(ossignal)
	if err := app.initialise(conf); err != nil {
		slog.Error("Startup failed", "error", err)
		logging.Close()
		os.Exit(1)
	}
	app.run()
}

// initialise brings up the platform and wires the control loop to it.
func (a *App) initialise(conf *config.Config) error {
	a.config = conf

	if conf.RealHW {
		a.platform = rpi.NewPlatform(conf)
	} else {
		a.platform = platform.NewTUIPlatform(conf, a.ossignal)
	}
	if err := a.platform.Start(); err != nil {
		return err
	}
	<-a.platform.Ready()

	path := conf.Hardware.Storage.Path
	if path == "" {
		path = defaultStoragePath
	}
	storage, err := nvram.OpenFile(path, persist.ImageSize(len(conf.Timer.PresetSeconds)))
	if err != nil {
		a.platform.Stop()
		return err
	}
	a.storage = storage

	wd, err := newWatchdog(conf.Watchdog)
	if err != nil {
		a.platform.Stop()
		return err
	}
	a.wd = wd

	a.loop = control.NewLoop(
		loopParams(conf),
		a.platform.Relay(),
		a.platform.Indicator(),
		a.platform.Display(),
		a.buildButtons(),
		persist.NewManager(a.storage),
		a.wd,
		a.stopsignal,
	)
	return nil
}

// run starts the control loop and blocks until an OS signal (or the
// simulation's quit key) requests shutdown.
func (a *App) run() {
	if err := a.loop.Startup(time.Now()); err != nil {
		slog.Error("Failed to start control loop", "error", err)
		a.shutdown()
		return
	}

	loopDone := make(chan struct{})
	go func() {
		a.loop.Run()
		close(loopDone)
	}()

	sig := <-a.ossignal
	slog.Info("Shutting down", "signal", sig)
	close(a.stopsignal)
	<-loopDone
	a.shutdown()
}

func (a *App) shutdown() {
	if soft, ok := a.wd.(*watchdog.Soft); ok {
		soft.Stop()
	}
	if dev, ok := a.wd.(*watchdog.Device); ok {
		dev.Close()
	}
	if a.storage != nil {
		a.storage.Close()
	}
	a.platform.Stop()
}

func (a *App) buildButtons() *control.Buttons {
	debounce := time.Duration(a.config.Input.DebounceMillis) * time.Millisecond
	long := time.Duration(a.config.Input.LongPressMillis) * time.Millisecond
	return &control.Buttons{
		Primary: input.NewButton(a.platform.Sampler(platform.ButtonPrimary), debounce, long),
		Plus:    input.NewButton(a.platform.Sampler(platform.ButtonPlus), debounce, long),
		Minus:   input.NewButton(a.platform.Sampler(platform.ButtonMinus), debounce, long),
		Mode:    input.NewButton(a.platform.Sampler(platform.ButtonMode), debounce, long),
	}
}

func loopParams(conf *config.Config) control.Params {
	return control.Params{
		FactoryPresets:     conf.Timer.PresetSeconds,
		Intervals:          conf.Timer.IntervalMinutes,
		MaxSeconds:         conf.Timer.MaxMinutes * 60,
		SecureStartSeconds: conf.Timer.SecureStartSeconds,
		MessageDuration:    time.Duration(conf.Display.MessageMillis) * time.Millisecond,
		RepaintInterval:    time.Duration(conf.Display.UpdateMillis) * time.Millisecond,
	}
}

func newWatchdog(cfg config.WatchdogConfig) (watchdog.Watchdog, error) {
	switch cfg.Mode {
	case "device":
		return watchdog.OpenDevice(cfg.Device)
	case "soft":
		return watchdog.NewSoft(time.Duration(cfg.TimeoutMillis) * time.Millisecond), nil
	default:
		return watchdog.Noop{}, nil
	}
}
