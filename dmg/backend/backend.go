// Package backend defines the host platform boundary: something that shows
// frames, plays audio and turns host key presses into input actions.
package backend

import (
	"errors"

	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

// ErrQuit is returned by a Driver step function when the user asked to quit.
var ErrQuit = errors.New("quit requested")

// Backend represents a complete emulator platform (rendering + input + audio).
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config BackendConfig) error

	// Update renders the frame and returns the input events seen since the
	// previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases platform resources.
	Cleanup() error
}

// Driver is implemented by backends that own the main loop, such as game
// engines. Drive calls step once per host frame until it returns an error
// or the user quits. step runs one emulated frame and returns it.
type Driver interface {
	Drive(step func(events []InputEvent) (*video.FrameBuffer, error)) error
}

// InputEvent is an action raised by the platform.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// StatusProvider exposes machine state for backends that draw debug panels.
type StatusProvider interface {
	Registers() cpu.Registers
	Frames() uint64
	DisplayFrames() uint64
	Stopped() bool
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title string
	Scale int

	// Audio is played by backends with an audio device. nil disables playback.
	Audio *audio.Queue

	// Status is optional; backends may ignore it.
	Status StatusProvider
}
