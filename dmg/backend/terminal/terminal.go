// Package terminal renders the screen in a terminal with tcell, two pixels
// per character cell using half blocks.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/video"
)

const (
	width  = video.Width
	height = video.Height

	// terminals report key presses only, a key is considered held while
	// repeats keep arriving within this window
	keyTimeout = 150 * time.Millisecond

	panelX       = width + 2
	minTermWidth = width + 2
	// half blocks: two pixel rows per line, plus the title row
	minTermHeight = height/2 + 2
	logCapacity   = 200
)

// shade 0 is the lightest
var shadeColors = [4]tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

// Backend implements backend.Backend using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	logBuffer *LogBuffer
	logLevel  *slog.LevelVar
	previous  *slog.Logger
	config    backend.BackendConfig

	quit       atomic.Bool
	keyStates  map[action.Action]time.Time
	activeKeys map[action.Action]bool
	pending    []backend.InputEvent
	now        func() time.Time

	currentFrame *video.FrameBuffer
}

// New creates a terminal backend on the process terminal.
func New() *Backend {
	return NewWithScreen(nil)
}

// NewWithScreen creates a terminal backend drawing on screen, which may be
// a tcell simulation screen. A nil screen opens the process terminal at Init.
func NewWithScreen(screen tcell.Screen) *Backend {
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	return &Backend{
		screen:     screen,
		logLevel:   level,
		logBuffer:  NewLogBuffer(logCapacity),
		keyStates:  make(map[action.Action]time.Time),
		activeKeys: make(map[action.Action]bool),
		now:        time.Now,
	}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	// logs are drawn next to the screen instead of going to stderr
	t.previous = slog.Default()
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()

	slog.Info("Terminal backend initialized")
	return nil
}

// Update drains terminal events, synthesizes press/hold/release for Game Boy
// buttons and draws the frame.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.buttonEvents(now)
	events = append(events, t.pending...)
	t.pending = nil

	if t.quit.Load() {
		events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.previous != nil {
		slog.SetDefault(t.previous)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-signals
	t.quit.Store(true)
}

// buttonEvents turns the timestamps of the last key repeats into events.
func (t *Backend) buttonEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	active := make(map[action.Action]bool)

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		active[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	for act := range t.activeKeys {
		if !active[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = active
	return events
}

// tcellKeyNames converts tcell keys to key names used in default mappings
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	var name string
	switch {
	case ev.Key() == tcell.KeyCtrlC:
		t.quit.Store(true)
		return
	case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		name = "Space"
	case ev.Key() == tcell.KeyRune:
		name = string(ev.Rune())
	case ev.Key() == tcell.KeyBackspace2:
		name = "Select"
	default:
		name = tcellKeyNames[ev.Key()]
	}

	act, ok := input.GetDefaultMapping(name)
	if !ok {
		if name == "+" || name == "-" {
			t.changeLogLevel(name)
		}
		return
	}

	switch {
	case act.IsGameBoy():
		if isDirection(act) {
			// d-pad directions are exclusive on a keyboard without key-up events
			for _, dir := range []action.Action{action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight} {
				delete(t.keyStates, dir)
			}
		}
		t.keyStates[act] = now
	case act == action.EmulatorSnapshot:
		if _, err := debug.SaveFramePNGToDir(t.currentFrame, "dmg_snapshot", ""); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
	default:
		t.pending = append(t.pending, backend.InputEvent{Action: act, Type: event.Press})
	}
}

func isDirection(act action.Action) bool {
	return act == action.GBDPadUp || act == action.GBDPadDown || act == action.GBDPadLeft || act == action.GBDPadRight
}

func (t *Backend) changeLogLevel(key string) {
	old := t.logLevel.Level()
	next := old
	if key == "+" && old > slog.LevelDebug {
		next = old - 4
	}
	if key == "-" && old < slog.LevelError {
		next = old + 4
	}
	t.logLevel.Set(next)
	if next != old {
		slog.Warn("Log filter changed", "from", old, "to", next)
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	title := t.config.Title
	if title == "" {
		title = "Game Boy"
	}
	t.drawText(1, 0, width, " "+title+" ", tcell.StyleDefault.Foreground(tcell.ColorYellow))

	t.drawScreen(frame)

	panelWidth := termWidth - panelX
	y := 1
	if t.config.Status != nil && panelWidth > 0 {
		regs := t.config.Status.Registers()
		style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
		lines := []string{
			fmt.Sprintf("AF %04X  BC %04X", regs.AF, regs.BC),
			fmt.Sprintf("DE %04X  HL %04X", regs.DE, regs.HL),
			fmt.Sprintf("SP %04X  PC %04X", regs.SP, regs.PC),
			fmt.Sprintf("frame %d  lcd %d", t.config.Status.Frames(), t.config.Status.DisplayFrames()),
		}
		if t.config.Status.Stopped() {
			lines = append(lines, "STOP")
		}
		for _, line := range lines {
			t.drawText(panelX, y, panelWidth, line, style)
			y++
		}
		y++
	}

	if panelWidth > 0 {
		t.drawLogs(panelX, y, panelWidth, termHeight-y)
	}
}

// drawScreen packs two pixel rows into each cell with an upper half block.
func (t *Backend) drawScreen(frame *video.FrameBuffer) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := shadeColors[frame.Shade(x, y)&3]
			bottom := shadeColors[frame.Shade(x, y+1)&3]
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, y/2+1, '▀', nil, style)
		}
	}
}

func (t *Backend) drawLogs(x, y, w, h int) {
	if h <= 0 {
		return
	}

	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}

	for i, entry := range t.logBuffer.GetRecent(h, t.logLevel.Level()) {
		t.drawText(x, y+i, w, FormatLogEntry(entry), styles[entry.Level])
	}
}

func (t *Backend) drawText(x, y, w int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= w {
			break
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}
