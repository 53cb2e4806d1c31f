package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestForComponentFollowsInit(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	log := ForComponent("workspace")

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	log.Debug("scanned", "count", 3)

	out := buf.String()
	assert.Contains(t, out, `"component":"workspace"`)
	assert.Contains(t, out, `"msg":"scanned"`)
	assert.Contains(t, out, `"count":3`)
}
