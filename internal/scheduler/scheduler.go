// Package scheduler drives the single-threaded, cooperative frame
// loop described in §4.5: 262 scanlines per frame, a fixed per-line
// CPU cycle budget, NMI latched at the vblank edge, and wall-clock
// pacing to the SNES's ~60.0988 Hz refresh rate.
package scheduler

import (
	"time"
)

// cyclesPerScanline is the CPU cycle budget per scanline: 1364 master
// cycles divided by 6 (the 65816's fixed master-clock-to-CPU-cycle
// ratio baseline used here).
const cyclesPerScanline = 227

const totalScanlines = 262

// targetFrameInterval paces the loop to the SNES's real refresh rate.
var targetFrameInterval = time.Second * 10000 / 600988 // 1s / 60.0988

// Machine is the subset of *bus.Bus the scheduler drives each frame.
type Machine interface {
	RenderScanline()
	StepCPU() uint32
}

// APU is stepped for bookkeeping alongside the CPU; a no-op
// implementation is fine since audio synthesis is out of scope.
type APU interface {
	Step(cycles uint32)
}

// Scheduler runs the per-frame scanline loop against a Machine,
// cooperatively pausable/cancellable between scanlines per §5.
type Scheduler struct {
	machine Machine
	apu     APU

	running bool
	paused  bool
}

// New creates a scheduler driving machine. apu may be nil if the APU
// stub needs no per-cycle bookkeeping.
func New(machine Machine, apu APU) *Scheduler {
	return &Scheduler{machine: machine, apu: apu}
}

// Start marks the scheduler as runnable; RunFrame becomes a no-op
// until this is called.
func (s *Scheduler) Start() { s.running = true }

// Stop cooperatively halts the loop; checked between scanlines.
func (s *Scheduler) Stop() { s.running = false }

// Pause suspends CPU/PPU advancement while leaving Running true, so a
// caller can distinguish "stopped" from "paused".
func (s *Scheduler) Pause() { s.paused = true }

// Resume clears a prior Pause with no state loss.
func (s *Scheduler) Resume() { s.paused = false }

func (s *Scheduler) IsRunning() bool { return s.running }
func (s *Scheduler) IsPaused() bool  { return s.paused }

// RunFrame advances exactly one frame (262 scanlines) if the
// scheduler is running and not paused, then paces to the target
// frame interval. It returns immediately, without sleeping, if paused
// or stopped, so a caller embedding it in a host event loop (e.g. the
// Ebitengine Update callback) never blocks the host's own pacing.
func (s *Scheduler) RunFrame() {
	if !s.running || s.paused {
		return
	}

	start := time.Now()

	for line := 0; line < totalScanlines; line++ {
		if !s.running {
			return
		}

		s.machine.RenderScanline()

		var consumed uint32
		for consumed < cyclesPerScanline {
			consumed += s.machine.StepCPU()
		}
		if s.apu != nil {
			s.apu.Step(consumed)
		}
	}

	elapsed := time.Since(start)
	if wait := targetFrameInterval - elapsed; wait > 0 {
		time.Sleep(wait)
	}
}
