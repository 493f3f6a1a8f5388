package scheduler

import "testing"

// fakeMachine counts scanlines rendered and reports a fixed per-step
// cycle cost, so a full frame takes a deterministic number of steps.
type fakeMachine struct {
	scanlines  int
	cpuSteps   int
	stepCycles uint32
}

func newFakeMachine(stepCycles uint32) *fakeMachine {
	return &fakeMachine{stepCycles: stepCycles}
}

func (m *fakeMachine) RenderScanline() { m.scanlines++ }

func (m *fakeMachine) StepCPU() uint32 {
	m.cpuSteps++
	return m.stepCycles
}

type fakeAPU struct {
	totalCycles uint32
	calls       int
}

func (a *fakeAPU) Step(cycles uint32) {
	a.calls++
	a.totalCycles += cycles
}

func TestRunFrameNoOpUntilStarted(t *testing.T) {
	m := newFakeMachine(227)
	s := New(m, nil)

	s.RunFrame()

	if m.scanlines != 0 {
		t.Fatalf("expected no scanlines rendered before Start, got %d", m.scanlines)
	}
}

func TestRunFrameRendersAllScanlines(t *testing.T) {
	m := newFakeMachine(227)
	apu := &fakeAPU{}
	s := New(m, apu)
	s.Start()

	s.RunFrame()

	if m.scanlines != totalScanlines {
		t.Fatalf("expected %d scanlines, got %d", totalScanlines, m.scanlines)
	}
	if apu.calls != totalScanlines {
		t.Fatalf("expected apu.Step called once per scanline (%d), got %d", totalScanlines, apu.calls)
	}
}

func TestRunFrameHonorsPerScanlineCycleBudget(t *testing.T) {
	m := newFakeMachine(100)
	s := New(m, nil)
	s.Start()

	s.RunFrame()

	// 100 cycles/step means ceil(227/100) = 3 steps drain one
	// scanline's budget.
	wantSteps := totalScanlines * 3
	if m.cpuSteps != wantSteps {
		t.Fatalf("expected %d CPU steps, got %d", wantSteps, m.cpuSteps)
	}
}

func TestRunFramePausedIsNoOp(t *testing.T) {
	m := newFakeMachine(227)
	s := New(m, nil)
	s.Start()
	s.Pause()

	s.RunFrame()

	if m.scanlines != 0 {
		t.Fatalf("expected no scanlines while paused, got %d", m.scanlines)
	}
	if !s.IsRunning() {
		t.Fatal("expected IsRunning to remain true while paused")
	}
	if !s.IsPaused() {
		t.Fatal("expected IsPaused to be true")
	}

	s.Resume()
	if s.IsPaused() {
		t.Fatal("expected IsPaused to clear after Resume")
	}
	s.RunFrame()
	if m.scanlines != totalScanlines {
		t.Fatalf("expected a full frame after Resume, got %d scanlines", m.scanlines)
	}
}

func TestStopHaltsMidFrame(t *testing.T) {
	m := &stoppingMachine{stopAfter: 5}
	s := New(m, nil)
	m.scheduler = s
	s.Start()

	s.RunFrame()

	if m.scanlines != m.stopAfter {
		t.Fatalf("expected Stop to halt rendering after %d scanlines, got %d", m.stopAfter, m.scanlines)
	}
	if s.IsRunning() {
		t.Fatal("expected IsRunning to be false after Stop")
	}
}

// stoppingMachine calls Stop on its own scheduler partway through a
// frame, exercising RunFrame's cooperative running check.
type stoppingMachine struct {
	scheduler *Scheduler
	scanlines int
	stopAfter int
}

func (m *stoppingMachine) RenderScanline() {
	m.scanlines++
	if m.scanlines == m.stopAfter {
		m.scheduler.Stop()
	}
}

func (m *stoppingMachine) StepCPU() uint32 { return cyclesPerScanline }

func TestNilAPUIsTolerated(t *testing.T) {
	m := newFakeMachine(227)
	s := New(m, nil)
	s.Start()

	s.RunFrame()

	if m.scanlines != totalScanlines {
		t.Fatalf("expected %d scanlines with nil APU, got %d", totalScanlines, m.scanlines)
	}
}
