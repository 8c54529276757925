package utilities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		dev  bool
		want zapcore.Level
	}{
		{"debug", false, zapcore.DebugLevel},
		{"warning", false, zapcore.WarnLevel},
		{"error", true, zapcore.ErrorLevel},
		{"", true, zapcore.DebugLevel},
		{"", false, zapcore.InfoLevel},
		{"bogus", false, zapcore.InfoLevel},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, levelFromString(tc.in, tc.dev), "level %q dev=%v", tc.in, tc.dev)
	}
}

func TestInit_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.log")

	lg, err := Init(LogConfig{Level: "info", File: path, MaxAgeDays: 1})
	require.NoError(t, err)
	lg.Info("hello file")
	_ = lg.Sync()

	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
