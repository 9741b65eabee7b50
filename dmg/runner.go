package dmg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Title string
	Scale int

	// Limiter paces frames against wall time. nil runs unthrottled.
	Limiter timing.Limiter

	// Recorder, when set, receives every audio frame and the backend gets no
	// audio queue. Without it the backend plays the queue if PlayAudio is set.
	Recorder  *audio.Recorder
	PlayAudio bool
}

// Runner drives a DMG against a backend: it runs one frame, hands it to the
// backend and feeds the returned input events back into the machine.
type Runner struct {
	emu     *DMG
	backend backend.Backend
	input   *input.Manager
	config  RunnerConfig

	paused   bool
	stepOnce bool
	quit     bool
}

func NewRunner(emu *DMG, b backend.Backend, config RunnerConfig) *Runner {
	if config.Limiter == nil {
		config.Limiter = timing.NewNoOpLimiter()
	}

	r := &Runner{
		emu:     emu,
		backend: b,
		input:   input.NewManager(),
		config:  config,
	}
	r.bindActions()
	return r
}

func (r *Runner) bindActions() {
	r.input.On(action.EmulatorPauseToggle, event.Press, func() {
		r.paused = !r.paused
		if !r.paused {
			r.config.Limiter.Reset()
		}
		slog.Info("Pause toggled", "paused", r.paused, "frame", r.emu.Frames())
	})
	r.input.On(action.EmulatorStepFrame, event.Press, func() {
		if r.paused {
			r.stepOnce = true
		}
	})
	r.input.On(action.EmulatorQuit, event.Press, func() {
		r.quit = true
	})
}

// Input returns the manager the runner dispatches backend events to.
func (r *Runner) Input() *input.Manager {
	return r.input
}

// Paused reports whether emulation is paused.
func (r *Runner) Paused() bool {
	return r.paused
}

// Run initializes the backend and loops until the user quits, ctx is done or
// emulation fails. A fatal emulation error is returned as is.
func (r *Runner) Run(ctx context.Context) (err error) {
	cfg := backend.BackendConfig{
		Title:  r.config.Title,
		Scale:  r.config.Scale,
		Status: r.emu,
	}
	if r.config.PlayAudio && r.config.Recorder == nil {
		cfg.Audio = r.emu.AudioQueue()
	}

	if err := r.backend.Init(cfg); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer func() {
		if cerr := r.backend.Cleanup(); cerr != nil {
			slog.Warn("Backend cleanup failed", "error", cerr)
		}
	}()

	if d, ok := r.backend.(backend.Driver); ok {
		return d.Drive(func(events []backend.InputEvent) (*video.FrameBuffer, error) {
			if ctx.Err() != nil {
				return nil, backend.ErrQuit
			}
			r.dispatch(events)
			if r.quit {
				return nil, backend.ErrQuit
			}
			if err := r.advance(); err != nil {
				return nil, err
			}
			return r.emu.Frame(), nil
		})
	}

	for {
		if ctx.Err() != nil {
			slog.Info("Run cancelled", "frames", r.emu.Frames())
			return nil
		}

		if err := r.advance(); err != nil {
			return err
		}

		events, err := r.backend.Update(r.emu.Frame())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		r.dispatch(events)
		if r.quit {
			slog.Info("Quit requested", "frames", r.emu.Frames())
			return nil
		}

		r.config.Limiter.WaitForNextFrame()
	}
}

// advance runs one frame unless paused, then drains audio to the recorder.
func (r *Runner) advance() error {
	r.emu.SetInput(r.input.State())

	if r.paused && !r.stepOnce {
		return nil
	}
	r.stepOnce = false

	if err := r.emu.RunUntilFrame(); err != nil {
		return err
	}

	if r.config.Recorder != nil {
		if _, err := r.config.Recorder.Drain(r.emu.AudioQueue()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) dispatch(events []backend.InputEvent) {
	for _, evt := range events {
		r.input.Trigger(evt.Action, evt.Type)
	}
}
