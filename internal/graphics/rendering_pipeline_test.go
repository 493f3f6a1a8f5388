//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"sync"
	"testing"
)

// MockEbitengineBackend simulates EbitengineBackend for testing
// rendering-pipeline failure scenarios without a real display.
type MockEbitengineBackend struct {
	initialized     bool
	config          Config
	createWindowErr error
	game            *MockGame
}

type MockGame struct {
	frameBuffer  []uint8
	updateCalled bool
	renderCalled bool
	emulatorFunc func() error
}

type MockWindow struct {
	backend     *MockEbitengineBackend
	shouldClose bool
	game        *MockGame
	renderError error
}

func (m *MockEbitengineBackend) Initialize(config Config) error {
	if m.initialized {
		return errors.New("backend already initialized")
	}
	m.config = config
	m.initialized = true
	return nil
}

func (m *MockEbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !m.initialized {
		return nil, errors.New("backend not initialized")
	}
	if m.createWindowErr != nil {
		return nil, m.createWindowErr
	}
	game := &MockGame{}
	m.game = game
	return &MockWindow{backend: m, game: game}, nil
}

func (m *MockEbitengineBackend) Cleanup() error   { m.initialized = false; return nil }
func (m *MockEbitengineBackend) IsHeadless() bool { return m.config.Headless }
func (m *MockEbitengineBackend) GetName() string  { return "MockEbitengine" }

func (w *MockWindow) SetTitle(title string)             {}
func (w *MockWindow) GetSize() (width, height int)      { return FrameWidth * 3, FrameHeight * 3 }
func (w *MockWindow) ShouldClose() bool                 { return w.shouldClose }
func (w *MockWindow) SwapBuffers()                      {}
func (w *MockWindow) PollEvents() []InputEvent          { return nil }

func (w *MockWindow) RenderFrame(frameBuffer []uint8) error {
	if w.renderError != nil {
		return w.renderError
	}
	if w.game == nil {
		return errors.New("game not initialized")
	}
	w.game.frameBuffer = frameBuffer
	w.game.renderCalled = true
	return nil
}

func (w *MockWindow) Cleanup() error { w.shouldClose = true; return nil }

func (g *MockGame) Update() error {
	g.updateCalled = true
	if g.emulatorFunc != nil {
		return g.emulatorFunc()
	}
	return nil
}

func mockFrame(fill uint8) []uint8 {
	buf := make([]uint8, FrameWidth*FrameHeight*4)
	for i := range buf {
		buf[i] = fill
	}
	return buf
}

func TestRenderingPipeline_MockBackend_RenderLifecycle(t *testing.T) {
	backend := &MockEbitengineBackend{}

	if _, err := backend.CreateWindow("Test", 800, 600); err == nil {
		t.Fatal("Expected error when creating window on uninitialized backend")
	}

	if err := backend.Initialize(Config{WindowTitle: "Test"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	window, err := backend.CreateWindow("Test", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}
	mockWindow := window.(*MockWindow)

	if mockWindow.game.renderCalled {
		t.Error("Render should not have been called yet")
	}

	frame := mockFrame(0xAB)
	if err := window.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if !mockWindow.game.renderCalled {
		t.Error("RenderFrame should have been called")
	}
	for i := 0; i < 16; i++ {
		if mockWindow.game.frameBuffer[i] != frame[i] {
			t.Errorf("frame buffer byte %d: got %d, want %d", i, mockWindow.game.frameBuffer[i], frame[i])
		}
	}
}

func TestRenderingPipeline_MockBackend_EmulatorUpdateErrorsPropagate(t *testing.T) {
	backend := &MockEbitengineBackend{}
	if err := backend.Initialize(Config{WindowTitle: "Test"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	window, err := backend.CreateWindow("Test", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}
	mockWindow := window.(*MockWindow)

	if err := mockWindow.game.Update(); err != nil {
		t.Fatalf("Game update without emulator function should not fail: %v", err)
	}
	if !mockWindow.game.updateCalled {
		t.Error("Game update should have been called")
	}

	calls := 0
	mockWindow.game.emulatorFunc = func() error {
		calls++
		return errors.New("emulator update failed")
	}
	if err := mockWindow.game.Update(); err == nil {
		t.Error("Expected emulator update error to be propagated")
	}
	if calls != 1 {
		t.Errorf("Expected emulator update to be called once, got %d", calls)
	}
}

func TestRenderingPipeline_MockBackend_NilGameFails(t *testing.T) {
	window := &MockWindow{game: nil}
	if err := window.RenderFrame(mockFrame(0)); err == nil {
		t.Fatal("Expected error when rendering with nil game")
	}
}

func TestRenderingPipeline_MockBackend_CreateWindowError(t *testing.T) {
	backend := &MockEbitengineBackend{createWindowErr: errors.New("window creation failed")}
	if err := backend.Initialize(Config{WindowTitle: "Test"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	if _, err := backend.CreateWindow("Test", 800, 600); err == nil {
		t.Fatal("Expected window creation to fail")
	}

	backend.createWindowErr = nil
	window, err := backend.CreateWindow("Test", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}
	mockWindow := window.(*MockWindow)
	mockWindow.renderError = errors.New("render failed")
	if err := window.RenderFrame(mockFrame(0)); err == nil {
		t.Fatal("Expected render to fail")
	}
}

// TestRenderingPipeline_ConcurrentAccess exercises the real Ebitengine
// window's RenderFrame under concurrent callers.
func TestRenderingPipeline_ConcurrentAccess(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{WindowTitle: "Concurrent Test"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	window, err := backend.CreateWindow("Concurrent Test", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}

	const goroutines, framesEach = 5, 10
	var wg sync.WaitGroup
	errs := make(chan error, goroutines*framesEach)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for f := 0; f < framesEach; f++ {
				if err := window.RenderFrame(mockFrame(uint8(id*framesEach + f))); err != nil {
					errs <- err
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent rendering error: %v", err)
	}
}
