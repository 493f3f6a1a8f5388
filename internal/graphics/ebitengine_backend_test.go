//go:build !headless
// +build !headless

package graphics

import (
	"testing"
)

func solidFrame(r, g, b, a uint8) []uint8 {
	buf := make([]uint8, FrameWidth*FrameHeight*4)
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, a
	}
	return buf
}

func TestEbitengineBackend_Initialize(t *testing.T) {
	backend := NewEbitengineBackend()

	config := Config{
		WindowTitle:  "Test Window",
		WindowWidth:  800,
		WindowHeight: 600,
		Fullscreen:   false,
		VSync:        true,
		Filter:       "nearest",
		AspectRatio:  "4:3",
		Headless:     false,
		Debug:        false,
	}

	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Expected successful initialization, got error: %v", err)
	}

	if !backend.(*EbitengineBackend).initialized {
		t.Error("Backend should be marked as initialized")
	}
	if backend.(*EbitengineBackend).config.WindowTitle != "Test Window" {
		t.Error("Config not properly stored during initialization")
	}
}

func TestEbitengineBackend_DoubleInitialize(t *testing.T) {
	backend := NewEbitengineBackend()
	config := Config{WindowTitle: "Test Window"}

	if err := backend.Initialize(config); err != nil {
		t.Fatalf("First initialization failed: %v", err)
	}

	err := backend.Initialize(config)
	if err == nil {
		t.Fatal("Expected error on double initialization, got nil")
	}
}

func TestEbitengineBackend_CreateWindow(t *testing.T) {
	backend := NewEbitengineBackend()
	config := Config{WindowTitle: "Test Window", WindowWidth: 800, WindowHeight: 600}

	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	window, err := backend.CreateWindow("Test Game", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}

	width, height := window.GetSize()
	if width != 800 || height != 600 {
		t.Errorf("Expected window size 800x600, got %dx%d", width, height)
	}

	if backend.(*EbitengineBackend).game == nil {
		t.Error("Backend should have game instance after window creation")
	}
}

func TestEbitengineBackend_CreateWindow_Uninitialized(t *testing.T) {
	backend := NewEbitengineBackend()
	if _, err := backend.CreateWindow("Test Game", 800, 600); err == nil {
		t.Fatal("Expected error when creating window on uninitialized backend")
	}
}

func TestEbitengineBackend_CreateWindow_Headless(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	if _, err := backend.CreateWindow("Test Game", 800, 600); err == nil {
		t.Fatal("Expected error when creating window in headless mode")
	}
}

func TestEbitengineWindow_RenderFrame(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{WindowTitle: "Test Window"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	window, err := backend.CreateWindow("Test Game", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}

	frame := solidFrame(0xFF, 0x00, 0x00, 0xFF)
	if err := window.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	got := window.(*EbitengineWindow).GetFrameBufferForTesting()
	if len(got) != len(frame) {
		t.Fatalf("frame buffer size = %d, want %d", len(got), len(frame))
	}
	for i := 0; i < 16; i++ {
		if got[i] != frame[i] {
			t.Errorf("frame buffer byte %d: got %d, want %d", i, got[i], frame[i])
		}
	}
}

func TestEbitengineWindow_RenderFrame_NilGame(t *testing.T) {
	window := &EbitengineWindow{}
	if err := window.RenderFrame(solidFrame(1, 2, 3, 4)); err == nil {
		t.Fatal("Expected error when rendering with nil game")
	}
}

func TestEbitengineWindow_RenderFrame_WrongSize(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	window, err := backend.CreateWindow("Test", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}
	if err := window.RenderFrame(make([]uint8, 10)); err == nil {
		t.Fatal("Expected error for wrong-sized framebuffer")
	}
}

func TestEbitengineWindow_EmulatorUpdateFunc(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{WindowTitle: "Test Window"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	window, err := backend.CreateWindow("Test Game", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}
	ebitengineWindow := window.(*EbitengineWindow)

	updateCalled := false
	ebitengineWindow.SetEmulatorUpdateFunc(func() error {
		updateCalled = true
		return nil
	})

	if ebitengineWindow.emulatorUpdateFunc == nil {
		t.Fatal("Emulator update function should be set")
	}
	if err := ebitengineWindow.game.Update(); err != nil {
		t.Fatalf("Game Update failed: %v", err)
	}
	if !updateCalled {
		t.Error("Emulator update function should have been called during game update")
	}
}

func TestEbitengineGame_Update(t *testing.T) {
	window := &EbitengineWindow{}
	game := &EbitengineGame{window: window}

	if err := game.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updateCalled := false
	window.emulatorUpdateFunc = func() error {
		updateCalled = true
		return nil
	}
	if err := game.Update(); err != nil {
		t.Fatalf("Update with emulator function failed: %v", err)
	}
	if !updateCalled {
		t.Error("Emulator update function should have been called")
	}
}

func TestEbitengineGame_Layout(t *testing.T) {
	game := &EbitengineGame{}
	w, h := game.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Errorf("Expected layout 800x600, got %dx%d", w, h)
	}
	if game.windowWidth != 800 || game.windowHeight != 600 {
		t.Errorf("Game window dimensions not updated correctly: %dx%d", game.windowWidth, game.windowHeight)
	}
}

func TestEbitengineWindow_WindowOperations(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{WindowTitle: "Test Window"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	window, err := backend.CreateWindow("Initial Title", 800, 600)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}

	window.SetTitle("New Title")
	if window.(*EbitengineWindow).title != "New Title" {
		t.Errorf("Title not updated correctly: got %q", window.(*EbitengineWindow).title)
	}

	if window.ShouldClose() {
		t.Error("Window should not initially be marked for closing")
	}
	if err := window.Cleanup(); err != nil {
		t.Fatalf("Window cleanup failed: %v", err)
	}
	if !window.ShouldClose() {
		t.Error("Window should be marked for closing after cleanup")
	}
}

func TestEbitengineBackend_BackendProperties(t *testing.T) {
	backend := NewEbitengineBackend()
	if backend.GetName() != "Ebitengine" {
		t.Errorf("Expected backend name 'Ebitengine', got '%s'", backend.GetName())
	}
	if backend.IsHeadless() {
		t.Error("Backend should not be headless by default")
	}
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	if !backend.IsHeadless() {
		t.Error("Backend should be headless when configured as such")
	}
}

func TestEbitengineWindow_PollEvents(t *testing.T) {
	window := &EbitengineWindow{
		events: []InputEvent{
			{Type: InputEventTypeKey, Key: KeyEscape, Pressed: true},
			{Type: InputEventTypeButton, Button: ButtonA, Pressed: true},
		},
	}

	if events := window.PollEvents(); len(events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(events))
	}
	if events := window.PollEvents(); len(events) != 0 {
		t.Errorf("Expected 0 events after clearing, got %d", len(events))
	}
}

func TestEbitengineWindow_SwapBuffers(t *testing.T) {
	window := &EbitengineWindow{}
	window.SwapBuffers()
}

func TestEbitengineBackend_Cleanup(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{WindowTitle: "Test Window"}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	if !backend.(*EbitengineBackend).initialized {
		t.Error("Backend should be initialized")
	}
	if err := backend.Cleanup(); err != nil {
		t.Fatalf("Backend cleanup failed: %v", err)
	}
	if backend.(*EbitengineBackend).initialized {
		t.Error("Backend should not be initialized after cleanup")
	}
}

func BenchmarkEbitengineWindow_RenderFrame(b *testing.B) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{WindowTitle: "Benchmark"}); err != nil {
		b.Fatalf("Backend initialization failed: %v", err)
	}
	window, err := backend.CreateWindow("Benchmark Game", 800, 600)
	if err != nil {
		b.Fatalf("Window creation failed: %v", err)
	}

	frame := solidFrame(0xFF, 0x00, 0x00, 0xFF)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := window.RenderFrame(frame); err != nil {
			b.Fatalf("RenderFrame failed: %v", err)
		}
	}
}
