package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogBuffer(t *testing.T) {
	lb := NewLogBuffer(3)
	for i, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		lb.Add(LogEntry{Level: level, Message: string(rune('a' + i))})
	}

	t.Run("wraps and returns newest first", func(t *testing.T) {
		got := lb.GetRecent(10, slog.LevelDebug)
		assert.Len(t, got, 3)
		assert.Equal(t, "d", got[0].Message)
		assert.Equal(t, "b", got[2].Message)
	})

	t.Run("filters by level", func(t *testing.T) {
		got := lb.GetRecent(10, slog.LevelWarn)
		assert.Len(t, got, 2)
	})

	t.Run("limits count", func(t *testing.T) {
		assert.Len(t, lb.GetRecent(1, slog.LevelDebug), 1)
	})
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo)).With("component", "cpu")

	logger.Debug("hidden")
	logger.Info("Loaded cartridge", "title", "TETRIS")

	got := lb.GetRecent(10, slog.LevelDebug)
	assert.Len(t, got, 1)
	assert.Equal(t, "Loaded cartridge component=cpu title=TETRIS", got[0].Message)
}

func TestFormatLogEntry(t *testing.T) {
	entry := LogEntry{
		Time:    time.Date(2024, 1, 1, 12, 30, 45, 0, time.UTC),
		Level:   slog.LevelWarn,
		Message: "careful",
	}
	assert.Equal(t, "12:30:45 [WRN] careful", FormatLogEntry(entry))
}
