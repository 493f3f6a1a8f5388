// Package app implements the main SNES emulator application with GUI support.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gosnes/internal/bus"
	"gosnes/internal/graphics"
	"gosnes/internal/input"
)

// Application represents the main SNES emulator application
type Application struct {
	bus *bus.Bus

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	config   *Config
	emulator *Emulator
	states   *StateManager

	running     bool
	paused      bool
	initialized bool
	headless    bool

	frameCount          uint64
	startTime           time.Time
	lastFPSTime         time.Time
	frameCountAtLastFPS uint64
	currentFPS          float64

	romPath   string
	romLoaded bool
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// NewApplication creates a new SNES emulator application
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a new SNES emulator application with optional headless mode
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:      NewConfig(),
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents(headless bool) error {
	app.bus = bus.New()

	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %v", err)
	}

	app.emulator = NewEmulator(app.bus, app.config)
	app.states = NewStateManager(app.config.Paths.SaveStates)

	app.initialized = true
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			backendType = graphics.BackendEbitengine
		}
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %v", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "gosnes - Go SNES Emulator",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType == graphics.BackendEbitengine {
			fmt.Printf("[APP_WARNING] Ebitengine backend failed (%v), falling back to headless mode\n", err)
			app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
			if err != nil {
				return fmt.Errorf("failed to create fallback headless backend: %v", err)
			}
			graphicsConfig.Headless = true
			if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
				return fmt.Errorf("failed to initialize fallback headless backend: %v", err)
			}
		} else {
			return fmt.Errorf("failed to initialize graphics backend: %v", err)
		}
	}

	// Headless backends get a window too: its RenderFrame is where the
	// headless backend writes its frame dumps.
	app.window, err = app.graphicsBackend.CreateWindow(
		graphicsConfig.WindowTitle,
		graphicsConfig.WindowWidth,
		graphicsConfig.WindowHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %v", err)
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	return nil
}

// LoadROM loads a ROM file into the emulator
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "read ROM file", Err: err}
	}

	if err := app.bus.LoadROM(data); err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	app.romPath = romPath
	app.romLoaded = true

	if app.window != nil {
		romName := filepath.Base(romPath)
		app.window.SetTitle(fmt.Sprintf("gosnes - %s", romName))
	}

	app.emulator.Start()
	return nil
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = time.Now()

	if app.config.Debug.EnableLogging {
		fmt.Printf("[APP_DEBUG] Starting emulator with %s backend...\n", app.graphicsBackend.GetName())
	}

	if app.graphicsBackend.GetName() == "Ebitengine" && app.window != nil {
		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			ebitengineWindow.SetEmulatorUpdateFunc(func() error {
				if err := app.processInput(); err != nil && app.config.Debug.EnableLogging {
					fmt.Printf("[APP_ERROR] Input processing error: %v\n", err)
				}
				if err := app.updateEmulator(); err != nil {
					return err
				}
				if err := app.render(); err != nil {
					return err
				}
				app.updateFPS()

				if app.window != nil && app.window.ShouldClose() {
					app.Stop()
				}
				return nil
			})
			return ebitengineWindow.Run()
		}
	}

	for app.running {
		if err := app.processInput(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] Input processing error: %v\n", err)
		}
		if err := app.updateEmulator(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_DEBUG] Emulator update error: %v\n", err)
		}
		if err := app.render(); err != nil && app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] Render error: %v\n", err)
		}
		app.updateFPS()

		if app.window != nil && app.window.ShouldClose() {
			app.Stop()
		}

		time.Sleep(16 * time.Millisecond)
	}

	if app.config.Debug.EnableLogging {
		fmt.Println("[APP_DEBUG] Emulator main loop ended")
	}
	return nil
}

// RunFrames advances exactly n frames without input polling or FPS
// accounting, for headless automation and scripted testing; each frame
// is still paced by the scheduler's wall-clock sleep.
func (app *Application) RunFrames(n int) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}
	for i := 0; i < n; i++ {
		if err := app.updateEmulator(); err != nil {
			return err
		}
		if err := app.render(); err != nil {
			return err
		}
	}
	return nil
}

// updateEmulator advances the emulator by one frame if not paused
func (app *Application) updateEmulator() error {
	if !app.paused && app.romLoaded {
		return app.emulator.Update()
	}
	return nil
}

// updateFPS recomputes the rolling current-FPS figure once per second
func (app *Application) updateFPS() {
	app.frameCount++
	now := time.Now()
	if now.Sub(app.lastFPSTime) >= time.Second {
		elapsed := now.Sub(app.lastFPSTime).Seconds()
		app.currentFPS = float64(app.frameCount-app.frameCountAtLastFPS) / elapsed
		app.lastFPSTime = now
		app.frameCountAtLastFPS = app.frameCount
	}
}

// processInput processes input events from the graphics backend and
// applies them to both controllers.
func (app *Application) processInput() error {
	if app.window == nil {
		return nil
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return nil

		case graphics.InputEventTypeButton:
			if player2Button(event.Button) {
				app.bus.Input.P2.SetButton(toPlayer2InputButton(event.Button), event.Pressed)
			} else if btn, ok := toInputButton(event.Button); ok {
				app.bus.Input.P1.SetButton(btn, event.Pressed)
			}

		case graphics.InputEventTypeKey:
			app.handleSpecialInput(event)
		}
	}

	return nil
}

// handleSpecialInput receives non-controller key events; no hotkeys are
// bound, so every event is ignored.
func (app *Application) handleSpecialInput(event graphics.InputEvent) {
	if !event.Pressed {
		return
	}
	// No hotkey-bound slot handling is wired today; SaveState/LoadState
	// remain available as direct Application methods for host UIs that
	// want to bind their own keys.
}

// toInputButton maps a player-1 graphics.Button to its input.Button
// equivalent. ok is false for player-2-only buttons.
func toInputButton(b graphics.Button) (input.Button, bool) {
	switch b {
	case graphics.ButtonA:
		return input.ButtonA, true
	case graphics.ButtonB:
		return input.ButtonB, true
	case graphics.ButtonX:
		return input.ButtonX, true
	case graphics.ButtonY:
		return input.ButtonY, true
	case graphics.ButtonL:
		return input.ButtonL, true
	case graphics.ButtonR:
		return input.ButtonR, true
	case graphics.ButtonUp:
		return input.ButtonUp, true
	case graphics.ButtonDown:
		return input.ButtonDown, true
	case graphics.ButtonLeft:
		return input.ButtonLeft, true
	case graphics.ButtonRight:
		return input.ButtonRight, true
	case graphics.ButtonStart:
		return input.ButtonStart, true
	case graphics.ButtonSelect:
		return input.ButtonSelect, true
	default:
		return 0, false
	}
}

// player2Button reports whether b belongs to the reduced player-2
// button set bound via the number row.
func player2Button(b graphics.Button) bool {
	switch b {
	case graphics.Button2Up, graphics.Button2Down, graphics.Button2Left, graphics.Button2Right,
		graphics.Button2A, graphics.Button2B, graphics.Button2Start, graphics.Button2Select:
		return true
	default:
		return false
	}
}

func toPlayer2InputButton(b graphics.Button) input.Button {
	switch b {
	case graphics.Button2Up:
		return input.ButtonUp
	case graphics.Button2Down:
		return input.ButtonDown
	case graphics.Button2Left:
		return input.ButtonLeft
	case graphics.Button2Right:
		return input.ButtonRight
	case graphics.Button2A:
		return input.ButtonA
	case graphics.Button2B:
		return input.ButtonB
	case graphics.Button2Start:
		return input.ButtonStart
	case graphics.Button2Select:
		return input.ButtonSelect
	default:
		return 0
	}
}

// GetBus returns the bus for direct access (useful for testing and advanced control)
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// render renders the current frame
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}

	if app.romLoaded {
		frameBuffer := app.bus.Framebuffer()
		if app.videoProcessor != nil {
			frameBuffer = app.videoProcessor.ProcessFrame(frameBuffer)
		}
		if err := app.window.RenderFrame(frameBuffer); err != nil {
			return fmt.Errorf("failed to render frame: %v", err)
		}
	}

	app.window.SwapBuffers()
	return nil
}

// Stop stops the application
func (app *Application) Stop() {
	app.running = false
	app.emulator.Stop()
}

// Pause pauses the emulator
func (app *Application) Pause() { app.paused = true }

// Resume resumes the emulator
func (app *Application) Resume() { app.paused = false }

// TogglePause toggles pause state
func (app *Application) TogglePause() { app.paused = !app.paused }

// SaveState saves the current emulator state to slot
func (app *Application) SaveState(slot int) error {
	if !app.romLoaded {
		return errors.New("no ROM loaded")
	}
	return app.states.SaveState(app.bus, slot, app.romPath)
}

// LoadState loads a previously saved emulator state from slot
func (app *Application) LoadState(slot int) error {
	if !app.romLoaded {
		return errors.New("no ROM loaded")
	}
	return app.states.LoadState(app.bus, slot, app.romPath)
}

// Reset resets the emulator
func (app *Application) Reset() {
	if app.bus != nil {
		app.bus.Reset()
	}
}

func (app *Application) IsRunning() bool { return app.running }
func (app *Application) IsPaused() bool  { return app.paused }
func (app *Application) GetFPS() float64 { return app.currentFPS }

// GetFrameCount returns the total frame count
func (app *Application) GetFrameCount() uint64 { return app.bus.FrameCount() }

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration { return time.Since(app.startTime) }

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string { return app.romPath }

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config { return app.config }

// ApplyDebugSettings applies debug settings to the CPU's instruction tracer
func (app *Application) ApplyDebugSettings() {
	if app.config == nil || app.bus == nil {
		return
	}
	app.bus.CPU.SetDebugLog(app.config.Debug.EnableLogging)
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	if app.config != nil && app.config.Debug.EnableLogging {
		fmt.Println("[APP_DEBUG] Cleaning up application resources...")
	}

	var lastErr error

	if app.states != nil {
		if err := app.states.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] State manager cleanup error: %v\n", err)
		}
	}

	if app.emulator != nil {
		if err := app.emulator.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Emulator cleanup error: %v\n", err)
		}
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Window cleanup error: %v\n", err)
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Graphics backend cleanup error: %v\n", err)
		}
	}

	app.initialized = false
	return lastErr
}
