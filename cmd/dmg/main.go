package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-dmg/dmg"
	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/backend/ebiten"
	"github.com/valerio/go-dmg/dmg/backend/headless"
	"github.com/valerio/go-dmg/dmg/backend/sdl2"
	"github.com/valerio/go-dmg/dmg/backend/terminal"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/timing"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Description = "A DMG-01 Game Boy emulator"
	app.Usage = "dmg [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rom",
			Usage:  "Path to the ROM file",
			EnvVar: "DMG_ROM",
		},
		cli.StringFlag{
			Name:   "backend",
			Usage:  "Platform backend: terminal, sdl2, ebiten or headless",
			Value:  "terminal",
			EnvVar: "DMG_BACKEND",
		},
		cli.IntFlag{
			Name:   "frames",
			Usage:  "Number of frames to run in headless mode (required for headless)",
			EnvVar: "DMG_FRAMES",
		},
		cli.IntFlag{
			Name:   "snapshot-interval",
			Usage:  "Save PNG snapshots every N frames in headless mode (0 = disabled)",
			EnvVar: "DMG_SNAPSHOT_INTERVAL",
		},
		cli.StringFlag{
			Name:   "snapshot-dir",
			Usage:  "Directory to save frame snapshots (default: temp directory)",
			EnvVar: "DMG_SNAPSHOT_DIR",
		},
		cli.StringFlag{
			Name:   "wav",
			Usage:  "Record audio to this WAV file instead of playing it",
			EnvVar: "DMG_WAV",
		},
		cli.IntFlag{
			Name:   "audio-buffer",
			Usage:  "Audio queue capacity in stereo frames",
			Value:  audio.DefaultQueueCapacity,
			EnvVar: "DMG_AUDIO_BUFFER",
		},
		cli.IntFlag{
			Name:   "scale",
			Usage:  "Window scale factor for windowed backends",
			Value:  4,
			EnvVar: "DMG_SCALE",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level: debug, info, warn or error",
			Value:  "info",
			EnvVar: "DMG_LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:   "trace",
			Usage:  "Log every executed instruction (requires debug log level)",
			EnvVar: "DMG_TRACE",
		},
		cli.StringFlag{
			Name:   "limiter",
			Usage:  "Frame pacing: adaptive, ticker or none",
			Value:  "adaptive",
			EnvVar: "DMG_LIMITER",
		},
		cli.StringFlag{
			Name:   "dump",
			Usage:  "Where to write the diagnostic dump when emulation fails",
			Value:  "dmg_crash.txt",
			EnvVar: "DMG_DUMP",
		},
	}
	app.Action = runEmulator
	return app
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	backendName := c.String("backend")
	level, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	if backendName == "headless" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	emu, err := dmg.NewWithFile(romPath,
		dmg.WithTrace(c.Bool("trace")),
		dmg.WithAudioBuffer(c.Int("audio-buffer")))
	if err != nil {
		return err
	}

	b, err := newBackend(backendName, c.Int("frames"), c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	if err != nil {
		return err
	}

	limiterKind := c.String("limiter")
	if backendName == "headless" {
		limiterKind = "none"
	}
	limiter, err := timing.New(limiterKind, dmg.CyclesPerFrame)
	if err != nil {
		return err
	}
	if stopper, ok := limiter.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	config := dmg.RunnerConfig{
		Title:     "dmg - " + emu.MMU().Cartridge().Title,
		Scale:     c.Int("scale"),
		Limiter:   limiter,
		PlayAudio: true,
	}

	if path := c.String("wav"); path != "" {
		rec, closeRec, err := openRecorder(path)
		if err != nil {
			return err
		}
		defer closeRec()
		config.Recorder = rec
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = dmg.NewRunner(emu, b, config).Run(ctx)

	if fatal := emu.Err(); fatal != nil {
		dumpPath := c.String("dump")
		if derr := debug.WriteDumpFile(dumpPath, emu, fatal); derr != nil {
			slog.Error("Failed to write diagnostic dump", "error", derr)
		} else {
			slog.Error("Wrote diagnostic dump", "path", dumpPath)
		}
	}
	return err
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func newBackend(name string, frames, snapshotInterval int, snapshotDir, romPath string) (backend.Backend, error) {
	switch name {
	case "terminal":
		return terminal.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	case "ebiten":
		return ebiten.New(), nil
	case "headless":
		snapshots, err := headless.CreateSnapshotConfig(snapshotInterval, snapshotDir, romPath)
		if err != nil {
			return nil, err
		}
		return headless.New(frames, snapshots), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func openRecorder(path string) (*audio.Recorder, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating wav file: %w", err)
	}

	rec := audio.NewRecorder(file)
	closeFn := func() {
		if err := rec.Close(); err != nil {
			slog.Error("Failed to finalize recording", "error", err)
		}
		if err := file.Close(); err != nil {
			slog.Error("Failed to close wav file", "error", err)
		}
		slog.Info("Audio recorded", "path", path, "frames", rec.Frames())
	}
	return rec, closeFn, nil
}
