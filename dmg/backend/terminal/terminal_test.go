package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

type fakeStatus struct{}

func (fakeStatus) Registers() cpu.Registers { return cpu.Registers{PC: 0x0150} }
func (fakeStatus) Frames() uint64           { return 42 }
func (fakeStatus) DisplayFrames() uint64    { return 41 }
func (fakeStatus) Stopped() bool            { return true }

// rowText reads n cells of row y starting at x.
func rowText(screen tcell.SimulationScreen, x, y, n int) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i], _, _, _ = screen.GetContent(x+i, y)
	}
	return string(runes)
}

func newSimulated(t *testing.T) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	b := NewWithScreen(screen)
	clock := time.Unix(0, 0)
	b.now = func() time.Time { return clock }

	previous := slog.Default()
	require.NoError(t, b.Init(backend.BackendConfig{Title: "TEST", Status: fakeStatus{}}))
	screen.SetSize(220, 80)
	t.Cleanup(func() {
		b.Cleanup()
		assert.Same(t, previous, slog.Default())
	})
	return b, screen, &clock
}

func TestBackend_DrawsHalfBlocks(t *testing.T) {
	b, screen, _ := newSimulated(t)

	frame := video.NewFrameBuffer()
	frame.Pixels()[0] = 3              // (0, 0) black
	frame.Pixels()[video.Width+1] = 2 // (1, 1) dark grey

	_, err := b.Update(frame)
	require.NoError(t, err)

	r, _, style, _ := screen.GetContent(0, 1)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, '▀', r)
	assert.Equal(t, tcell.ColorBlack, fg)
	assert.Equal(t, tcell.ColorWhite, bg)

	_, _, style, _ = screen.GetContent(1, 1)
	fg, bg, _ = style.Decompose()
	assert.Equal(t, tcell.ColorWhite, fg)
	assert.Equal(t, tcell.ColorGray, bg)

	r, _, _, _ = screen.GetContent(panelX+13, 3)
	assert.Equal(t, '1', r, "PC column of the register panel")
	assert.Equal(t, "frame 42  lcd 41", rowText(screen, panelX, 4, 16))
	assert.Equal(t, "STOP", rowText(screen, panelX, 5, 4))
}

func TestBackend_ButtonEvents(t *testing.T) {
	b, screen, clock := newSimulated(t)
	frame := video.NewFrameBuffer()

	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Press}}, events)

	// a repeat keeps it held
	*clock = clock.Add(50 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, _ = b.Update(frame)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Hold}}, events)

	*clock = clock.Add(keyTimeout)
	events, _ = b.Update(frame)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Release}}, events)

	events, _ = b.Update(frame)
	assert.Empty(t, events)
}

func TestBackend_DirectionsAreExclusive(t *testing.T) {
	b, screen, _ := newSimulated(t)

	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	events, _ := b.Update(video.NewFrameBuffer())

	assert.Equal(t, []backend.InputEvent{{Action: action.GBDPadLeft, Type: event.Press}}, events)
}

func TestBackend_EmulatorActions(t *testing.T) {
	b, screen, _ := newSimulated(t)

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	events, _ := b.Update(video.NewFrameBuffer())
	assert.Equal(t, []backend.InputEvent{
		{Action: action.EmulatorPauseToggle, Type: event.Press},
		{Action: action.EmulatorQuit, Type: event.Press},
	}, events)

	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	events, _ = b.Update(video.NewFrameBuffer())
	assert.Contains(t, events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
}

func TestBackend_LogLevelKeys(t *testing.T) {
	b, screen, _ := newSimulated(t)

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	b.Update(video.NewFrameBuffer())
	assert.Equal(t, slog.LevelDebug, b.logLevel.Level())

	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	b.Update(video.NewFrameBuffer())
	assert.Equal(t, slog.LevelWarn, b.logLevel.Level())
}
