// Package app wires the bus and frame scheduler into the application's
// per-update-tick emulation step.
package app

import (
	"time"

	"gosnes/internal/bus"
	"gosnes/internal/scheduler"
)

// Emulator drives one bus through the scheduler's per-frame scanline
// loop and tracks just enough timing for the host's FPS display; the
// actual cadence, NMI latching and wall-clock pacing live in
// scheduler.Scheduler.
type Emulator struct {
	bus       *bus.Bus
	scheduler *scheduler.Scheduler

	isRunning       bool
	lastResetTime   time.Time
	actualFrameTime time.Duration
}

// NewEmulator creates an emulator driving bus, stopped until Start is
// called.
func NewEmulator(b *bus.Bus, config *Config) *Emulator {
	e := &Emulator{
		bus:       b,
		scheduler: scheduler.New(b, b.APU),
	}
	e.Reset()
	return e
}

// Reset marks the emulator as freshly reset; the bus itself is reset
// separately by the caller (Application.LoadROM / Application.Reset).
func (e *Emulator) Reset() {
	e.lastResetTime = time.Now()
	e.actualFrameTime = 0
}

// Start arms the scheduler so Update begins advancing frames.
func (e *Emulator) Start() {
	e.isRunning = true
	e.scheduler.Start()
}

// Stop halts the scheduler; Update becomes a no-op until Start again.
func (e *Emulator) Stop() {
	e.isRunning = false
	e.scheduler.Stop()
}

// Update advances exactly one frame, per §4.5's fixed scanline budget,
// and paces to the target refresh rate.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	start := time.Now()
	e.scheduler.RunFrame()
	e.actualFrameTime = time.Since(start)

	return nil
}

// StepFrame advances exactly one frame regardless of the running flag,
// for single-step debugging/tooling.
func (e *Emulator) StepFrame() error {
	wasRunning := e.scheduler.IsRunning()
	wasPaused := e.scheduler.IsPaused()
	e.scheduler.Start()
	e.scheduler.Resume()
	e.scheduler.RunFrame()
	if !wasRunning {
		e.scheduler.Stop()
	}
	if wasPaused {
		e.scheduler.Pause()
	}
	return nil
}

// StepInstruction executes exactly one CPU instruction, for
// single-step debugging.
func (e *Emulator) StepInstruction() error {
	e.bus.StepCPU()
	return nil
}

// Pause suspends frame advancement without losing the running flag.
func (e *Emulator) Pause() { e.scheduler.Pause() }

// Resume clears a prior Pause.
func (e *Emulator) Resume() { e.scheduler.Resume() }

func (e *Emulator) IsRunning() bool { return e.isRunning }

func (e *Emulator) GetFrameCount() uint64 { return e.bus.FrameCount() }

func (e *Emulator) GetActualFrameTime() time.Duration { return e.actualFrameTime }

func (e *Emulator) GetUptime() time.Duration { return time.Since(e.lastResetTime) }

// Cleanup releases emulator resources; there are none beyond the bus
// and scheduler, which are owned by Application.
func (e *Emulator) Cleanup() error {
	e.Stop()
	return nil
}
