package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	t.Cleanup(func() {
		UnsetTestOutput()
		InitLogger("info", FormatText)
	})

	InitLogger(level, format)
	fn()
	return buf.String()
}

func TestLogger_TextOutput(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:     "info",
			level:    "info",
			logFn:    func() { Info("sweep finished") },
			contains: []string{"sweep finished", "level=INFO"},
		},
		{
			name:     "debug suppressed at info",
			level:    "info",
			logFn:    func() { Debug("skipping entry") },
			excludes: []string{"skipping entry"},
		},
		{
			name:     "debug shown at debug",
			level:    "debug",
			logFn:    func() { Debugf("skipping %s", "entry") },
			contains: []string{"skipping entry", "level=DEBUG"},
		},
		{
			name:  "warn with fields",
			level: "warn",
			logFn: func() {
				Warn("source unavailable", Fields{"detector": "msi", "count": 3})
			},
			contains: []string{"source unavailable", "level=WARN", "detector=msi", "count=3"},
		},
		{
			name:     "error",
			level:    "error",
			logFn:    func() { Errorf("load failed: %s", "boom") },
			contains: []string{"load failed: boom", "level=ERROR"},
		},
		{
			name:     "success",
			level:    "info",
			logFn:    func() { Success("refresh complete") },
			contains: []string{"refresh complete", "status=success"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, tt.level, FormatText, tt.logFn)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	out := capture(t, "info", FormatJSON, func() {
		Info("record cleared", Fields{"package": "com.example.tool"})
	})
	assert.Contains(t, out, `"msg":"record cleared"`)
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"package":"com.example.tool"`)
}

func TestSetOutputFormat_KeepsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	InitLogger("debug", FormatText)
	SetOutputFormat(FormatJSON)
	Debug("still debug")
	assert.Contains(t, buf.String(), `"msg":"still debug"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestGetLogger_InitializesIfNil(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()
	assert.NotPanics(t, func() {
		assert.NotNil(t, GetLogger())
	})
}
