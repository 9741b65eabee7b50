//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	bytesPerPixel = 4
	audioSamples  = 1024
	// keep about this many frames queued on the device
	audioTarget = audio.SampleRate / 20
	// interleaved float32 stereo
	audioBytesPerFrame = 8
)

// Backend implements backend.Backend using SDL2 bindings.
// Building it requires the SDL2 development libraries and the sdl2 build tag.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte

	audioDevice sdl.AudioDeviceID
	stream      *audio.Stream
	audioBuf    []byte

	config       backend.BackendConfig
	currentFrame *video.FrameBuffer
}

func New() *Backend {
	return &Backend{
		pixels: make([]byte, video.Width*video.Height*bytesPerPixel),
	}
}

func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	scale := int32(max(config.Scale, 1))

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(config.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		video.Width*scale, video.Height*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	// ABGR8888 is R,G,B,A in memory on little endian hosts
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, video.Width, video.Height)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	if config.Audio != nil {
		if err := s.openAudio(config.Audio); err != nil {
			// the emulator still runs without sound
			slog.Warn("Audio disabled", "error", err)
		}
	}

	slog.Info("SDL2 backend initialized", "scale", scale, "audio", s.audioDevice != 0)
	return nil
}

func (s *Backend) openAudio(q *audio.Queue) error {
	spec := &sdl.AudioSpec{
		Freq:     audio.SampleRate,
		Format:   sdl.AUDIO_F32LSB,
		Channels: 2,
		Samples:  audioSamples,
	}

	var obtained sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &obtained, 0)
	if err != nil {
		return err
	}

	s.audioDevice = id
	s.stream = audio.NewStream(q)
	sdl.PauseAudioDevice(id, false)
	return nil
}

// Update processes SDL events, renders the frame and tops up the audio device.
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
		case *sdl.KeyboardEvent:
			if evt, ok := s.keyEvent(e); ok {
				events = append(events, evt)
			}
		}
	}

	s.currentFrame = frame
	if err := s.renderFrame(frame); err != nil {
		return events, err
	}

	if s.audioDevice != 0 {
		if err := s.feedAudio(); err != nil {
			return events, fmt.Errorf("queueing audio: %w", err)
		}
	}

	return events, nil
}

func (s *Backend) keyEvent(e *sdl.KeyboardEvent) (backend.InputEvent, bool) {
	if e.Repeat != 0 {
		return backend.InputEvent{}, false
	}
	act, ok := keyMapping[e.Keysym.Sym]
	if !ok {
		return backend.InputEvent{}, false
	}

	if e.Type == sdl.KEYUP {
		if !act.IsGameBoy() {
			return backend.InputEvent{}, false
		}
		return backend.InputEvent{Action: act, Type: event.Release}, true
	}

	if act == action.EmulatorSnapshot {
		if _, err := debug.SaveFramePNGToDir(s.currentFrame, "dmg_snapshot", ""); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
		return backend.InputEvent{}, false
	}
	return backend.InputEvent{Action: act, Type: event.Press}, true
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	frame.CopyRGBA(s.pixels)

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.Width*bytesPerPixel); err != nil {
		return fmt.Errorf("updating texture: %w", err)
	}
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

// feedAudio moves queued frames to the device until it holds audioTarget frames.
func (s *Backend) feedAudio() error {
	queued := int(sdl.GetQueuedAudioSize(s.audioDevice)) / audioBytesPerFrame
	missing := audioTarget - queued
	if missing <= 0 {
		return nil
	}

	size := missing * audioBytesPerFrame
	if cap(s.audioBuf) < size {
		s.audioBuf = make([]byte, size)
	}
	chunk, err := readAudio(s.stream, s.audioBuf[:size])
	if err != nil {
		return err
	}
	return sdl.QueueAudio(s.audioDevice, chunk)
}

func (s *Backend) Cleanup() error {
	if s.audioDevice != 0 {
		sdl.CloseAudioDevice(s.audioDevice)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}
