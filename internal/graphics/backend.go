// Package graphics provides an abstraction layer for different
// rendering backends (Ebitengine, headless, terminal) that consume
// the emulator's 256x224 RGBA framebuffer and produce controller
// input events.
package graphics

const (
	FrameWidth  = 256
	FrameHeight = 224
)

// Backend represents a graphics rendering backend.
type Backend interface {
	Initialize(config Config) error
	CreateWindow(title string, width, height int) (Window, error)
	Cleanup() error
	IsHeadless() bool
	GetName() string
}

// Window represents a rendering window.
type Window interface {
	SetTitle(title string)
	GetSize() (width, height int)
	ShouldClose() bool
	SwapBuffers()
	PollEvents() []InputEvent

	// RenderFrame presents one FrameWidth*FrameHeight*4-byte RGBA
	// framebuffer, as produced by bus.Framebuffer().
	RenderFrame(frameBuffer []uint8) error

	Cleanup() error
}

// Config contains configuration for graphics backends.
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	Filter      string // "nearest", "linear"
	AspectRatio string // "4:3", "16:9", "original"

	Headless bool
	Debug    bool
}

// InputEvent represents an input event from the window.
type InputEvent struct {
	Type      InputEventType
	Key       Key
	Button    Button
	Pressed   bool
	Modifiers ModifierKey
}

type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents keyboard keys the backends translate into events.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyZ
	KeyX
	KeyA
	KeyS
	KeyQ
	KeyE
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
)

// Button represents SNES controller buttons as a sequential enum, not
// input.Button's bit values; the app translates it to input.Button.
type Button int

const (
	ButtonUnknown Button = iota
	ButtonB
	ButtonY
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonX
	ButtonL
	ButtonR
	// Player 2, bound to a reduced button set via the number row.
	Button2Up
	Button2Down
	Button2Left
	Button2Right
	Button2A
	Button2B
	Button2Start
	Button2Select
)

type ModifierKey int

const (
	ModifierNone  ModifierKey = 0
	ModifierShift ModifierKey = 1 << iota
	ModifierCtrl
	ModifierAlt
	ModifierSuper
)

// BackendType identifies a selectable graphics backend.
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type.
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	default:
		return NewEbitengineBackend(), nil
	}
}

// AsEbitengineWindow tries to cast a Window to *EbitengineWindow.
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	w, ok := window.(*EbitengineWindow)
	return w, ok
}
