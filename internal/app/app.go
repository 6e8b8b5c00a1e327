// Package app implements the emulator application: configuration, the
// chosen presentation backend and the frame loop around the console.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sen/internal/cartridge"
	"sen/internal/console"
	"sen/internal/graphics"
	"sen/internal/logger"
	"sen/internal/statsview"
)

// Application represents the main emulator application
type Application struct {
	config *Config

	console  *console.Console
	emulator *Emulator

	graphicsBackend graphics.Backend
	window          graphics.Window

	romPath   string
	savePath  string
	cartridge *cartridge.Cartridge
	trace     io.WriteCloser

	running     bool
	paused      bool
	initialized bool
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates the application and its presentation backend
func NewApplication(config *Config) (*Application, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.validate(); err != nil {
		return nil, &ApplicationError{Component: "config", Operation: "validate", Err: err}
	}

	app := &Application{config: config}

	if err := app.initializeGraphicsBackend(); err != nil {
		return nil, &ApplicationError{Component: "graphics", Operation: "initialization", Err: err}
	}

	if addr := config.Debug.Statsview; addr != "" {
		statsview.Launch(addr, os.Stderr)
	}

	app.initialized = true
	return app, nil
}

// initializeGraphicsBackend creates the configured backend and its window.
// A failing Ebitengine backend falls back to headless.
func (app *Application) initializeGraphicsBackend() error {
	backendType := graphics.BackendType(app.config.Video.Backend)

	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		return err
	}

	width, height := app.config.GetWindowResolution()
	graphicsConfig := graphics.Config{
		WindowTitle:  app.config.Window.Title,
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Brightness:   app.config.Video.Brightness,
		Contrast:     app.config.Video.Contrast,
		Saturation:   app.config.Video.Saturation,
		Headless:     backendType == graphics.BackendHeadless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := backend.Initialize(graphicsConfig); err != nil {
		if backendType != graphics.BackendEbitengine {
			return err
		}
		logger.Logf(logger.TagApp, "Ebitengine backend failed (%v), falling back to headless", err)
		backend = graphics.NewHeadlessBackend()
		graphicsConfig.Headless = true
		if err := backend.Initialize(graphicsConfig); err != nil {
			return err
		}
	}

	window, err := backend.CreateWindow(graphicsConfig.WindowTitle, width, height)
	if err != nil {
		backend.Cleanup()
		return fmt.Errorf("failed to create window: %w", err)
	}

	if hw, ok := window.(*graphics.HeadlessWindow); ok {
		hw.SetOutputPath(app.config.Paths.Frames)
		hw.DumpFrames(app.config.Paths.DumpFrames...)
	}

	app.graphicsBackend = backend
	app.window = window
	return nil
}

// LoadROM loads a ROM file, restores its battery save and builds the
// console around it
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	app.cartridge = cart
	app.romPath = romPath
	app.savePath = app.saveFilePath(romPath)

	if cart.HasBattery() {
		if err := app.loadSave(); err != nil {
			return &ApplicationError{Component: "cartridge", Operation: "load save", Err: err}
		}
	}

	app.console = console.New(cart)
	app.emulator = NewEmulator(app.console, app.config.Emulation.FrameRate)
	_, ownLoop := app.window.(graphics.LoopWindow)
	app.emulator.SetThrottle(!ownLoop && !app.graphicsBackend.IsHeadless())

	app.window.SetTitle(fmt.Sprintf("%s - %s", app.config.Window.Title, filepath.Base(romPath)))

	if err := app.ApplyDebugSettings(); err != nil {
		return err
	}

	logger.Logf(logger.TagApp, "loaded %s: %s", romPath, cart)
	return nil
}

// saveFilePath is the ROM name with a .sav extension, in the save data
// directory if one is configured
func (app *Application) saveFilePath(romPath string) string {
	name := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath)) + ".sav"
	if app.config.Paths.SaveData != "" {
		return filepath.Join(app.config.Paths.SaveData, name)
	}
	return filepath.Join(filepath.Dir(romPath), name)
}

func (app *Application) loadSave() error {
	f, err := os.Open(app.savePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Logf(logger.TagApp, "restoring cartridge RAM from %s", app.savePath)
	return app.cartridge.LoadRAM(f)
}

func (app *Application) writeSave() error {
	if app.cartridge == nil || !app.cartridge.HasBattery() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(app.savePath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(app.savePath)
	if err != nil {
		return err
	}
	if err := app.cartridge.SaveRAM(f); err != nil {
		f.Close()
		return err
	}
	logger.Logf(logger.TagApp, "cartridge RAM written to %s", app.savePath)
	return f.Close()
}

// Run runs frames until ctx is done, the window closes, the frame limit is
// reached or emulation fails
func (app *Application) Run(ctx context.Context) error {
	if app.console == nil {
		return errors.New("no ROM loaded")
	}

	app.running = true
	defer func() { app.running = false }()

	if lw, ok := app.window.(graphics.LoopWindow); ok {
		return lw.Run(func() error {
			if ctx.Err() != nil || !app.running {
				return graphics.ErrQuit
			}
			return app.runFrame()
		})
	}

	for app.running {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := app.runFrame(); err != nil {
			return err
		}
	}
	return nil
}

// runFrame handles input, emulates one frame and presents it
func (app *Application) runFrame() error {
	app.processInput()

	if !app.paused {
		if err := app.emulator.Update(); err != nil {
			return fmt.Errorf("emulation stopped at %s: %w", app.console.State(), err)
		}
	}

	if err := app.window.RenderFrame(app.console.Frame()); err != nil {
		return &ApplicationError{Component: "graphics", Operation: "render", Err: err}
	}

	if limit := app.config.Emulation.FrameLimit; limit > 0 && app.emulator.GetFrameCount() >= uint64(limit) {
		logger.Logf(logger.TagApp, "frame limit %d reached", limit)
		app.Stop()
	}
	if app.window.ShouldClose() {
		app.Stop()
	}
	return nil
}

// processInput applies window events to the controllers and hot keys
func (app *Application) processInput() {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()

		case graphics.InputEventTypeButton:
			if c := app.console.Controller(event.Player); c != nil {
				c.SetButton(event.Button, event.Pressed)
			}

		case graphics.InputEventTypeKey:
			if !event.Pressed {
				continue
			}
			switch event.Key {
			case graphics.KeyP:
				app.TogglePause()
				logger.Logf(logger.TagApp, "paused: %v", app.paused)
			case graphics.KeyF1:
				app.Reset()
			case graphics.KeyF12:
				if _, err := app.Screenshot(); err != nil {
					logger.Logf(logger.TagApp, "screenshot failed: %v", err)
				}
			}
		}
	}
}

// Screenshot writes the current frame to the screenshot directory and
// returns the file name
func (app *Application) Screenshot() (string, error) {
	if app.console == nil {
		return "", errors.New("no ROM loaded")
	}
	name := fmt.Sprintf("%s-%06d.png",
		strings.TrimSuffix(filepath.Base(app.romPath), filepath.Ext(app.romPath)),
		app.console.PPU.Frame())
	path := filepath.Join(app.config.Paths.Screenshots, name)
	if err := graphics.SaveScreenshot(path, app.console.Frame(), app.config.Window.Scale); err != nil {
		return "", err
	}
	logger.Logf(logger.TagApp, "screenshot saved to %s", path)
	return path, nil
}

// ApplyDebugSettings applies the debug section of the configuration
func (app *Application) ApplyDebugSettings() error {
	debug := app.config.Debug

	if debug.EnableLogging {
		logger.SetEcho(os.Stderr)
	} else {
		logger.SetEcho(nil)
	}
	logger.Enable(debug.LogTags...)

	if app.console == nil {
		return nil
	}

	if app.trace != nil {
		app.trace.Close()
		app.trace = nil
	}
	app.console.SetTrace(nil)

	if !debug.CPUTrace {
		return nil
	}
	if debug.TraceFile == "" {
		app.console.SetTrace(os.Stderr)
		return nil
	}
	f, err := os.Create(debug.TraceFile)
	if err != nil {
		return &ApplicationError{Component: "debug", Operation: "open trace file", Err: err}
	}
	app.trace = f
	app.console.SetTrace(f)
	return nil
}

// Stop stops the application
func (app *Application) Stop() {
	app.running = false
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// Reset resets the console
func (app *Application) Reset() {
	if app.console != nil {
		app.console.Reset()
		logger.Log(logger.TagApp, "console reset")
	}
}

// GetConsole returns the console, or nil before a ROM is loaded
func (app *Application) GetConsole() *console.Console {
	return app.console
}

// GetWindow returns the presentation window
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetFrameCount returns the number of frames emulated
func (app *Application) GetFrameCount() uint64 {
	if app.emulator == nil {
		return 0
	}
	return app.emulator.GetFrameCount()
}

// GetStats returns the emulator's timing figures
func (app *Application) GetStats() EmulatorStats {
	if app.emulator == nil {
		return EmulatorStats{}
	}
	return app.emulator.GetPerformanceStats()
}

// Cleanup writes the battery save and releases all resources
func (app *Application) Cleanup() error {
	var errs []error

	if err := app.writeSave(); err != nil {
		errs = append(errs, &ApplicationError{Component: "cartridge", Operation: "write save", Err: err})
	}

	if app.trace != nil {
		errs = append(errs, app.trace.Close())
		app.trace = nil
	}

	if app.window != nil {
		errs = append(errs, app.window.Cleanup())
	}
	if app.graphicsBackend != nil {
		errs = append(errs, app.graphicsBackend.Cleanup())
	}

	app.initialized = false
	return errors.Join(errs...)
}
