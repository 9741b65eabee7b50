//go:build ebiten

package ebiten

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

const audioBufferSize = 100 * time.Millisecond

// Backend runs the emulator inside an Ebiten game loop. Ebiten owns the main
// loop, so the runner uses Drive instead of calling Update.
type Backend struct {
	config backend.BackendConfig
	player *ebaudio.Player
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	b.config = config
	scale := max(config.Scale, 1)

	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowSize(video.Width*scale, video.Height*scale)
	ebiten.SetTPS(ebiten.DefaultTPS)

	if config.Audio != nil {
		ctx := ebaudio.NewContext(audio.SampleRate)
		player, err := ctx.NewPlayerF32(audio.NewStream(config.Audio))
		if err != nil {
			slog.Warn("Audio disabled", "error", err)
		} else {
			player.SetBufferSize(audioBufferSize)
			player.Play()
			b.player = player
		}
	}

	slog.Info("Ebiten backend initialized", "scale", scale, "audio", b.player != nil)
	return nil
}

// Update is not used: Ebiten drives frames through Drive.
func (b *Backend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, errors.New("ebiten backend must be run through Drive")
}

// Drive hands the main loop to Ebiten. It returns nil when the window is
// closed or step returns backend.ErrQuit.
func (b *Backend) Drive(step func(events []backend.InputEvent) (*video.FrameBuffer, error)) error {
	g := &game{
		step:   step,
		pixels: make([]byte, video.Width*video.Height*4),
	}
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("ebiten: %w", err)
	}
	return nil
}

func (b *Backend) Cleanup() error {
	if b.player != nil {
		return b.player.Close()
	}
	return nil
}

type game struct {
	step   func([]backend.InputEvent) (*video.FrameBuffer, error)
	frame  *video.FrameBuffer
	screen *ebiten.Image
	pixels []byte
}

func (g *game) Update() error {
	events := pollEvents()

	frame, err := g.step(events)
	if errors.Is(err, backend.ErrQuit) {
		return ebiten.Termination
	}
	if err != nil {
		return err
	}
	g.frame = frame
	return nil
}

func pollEvents() []backend.InputEvent {
	var events []backend.InputEvent
	for key, act := range keyMapping {
		switch {
		case inpututil.IsKeyJustPressed(key):
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		case inpututil.IsKeyJustReleased(key) && act.IsGameBoy():
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	return events
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		return
	}
	if g.screen == nil {
		g.screen = ebiten.NewImage(video.Width, video.Height)
	}

	g.frame.CopyRGBA(g.pixels)
	g.screen.WritePixels(g.pixels)
	screen.DrawImage(g.screen, nil)

	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if _, err := debug.SaveFramePNGToDir(g.frame, "dmg_snapshot", ""); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
	}
}

func (g *game) Layout(int, int) (int, int) {
	return video.Width, video.Height
}
