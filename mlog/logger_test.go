package mlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	_, _, err := NewLogger(&LogConfig{Level: "not-a-level"})
	assert.Error(t, err)

	lg, closeLog, err := NewLogger(&LogConfig{Level: ""})
	require.NoError(t, err)
	assert.NotNil(t, lg)
	closeLog()

	f := filepath.Join(t.TempDir(), "sllist.log")
	lg, closeLog, err = NewLogger(&LogConfig{Level: "debug", File: f, Production: true})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
	closeLog()

	b, err := os.ReadFile(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
}

// openFDs counts the open file descriptors of this process.
// The test is skipped where /proc is not available.
func openFDs(t *testing.T) int {
	t.Helper()
	es, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("cannot list open fds:", err)
	}
	return len(es)
}

func TestNewLogger_closeReleasesFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "sllist.log")
	before := openFDs(t)
	for i := 0; i < 50; i++ {
		lg, closeLog, err := NewLogger(&LogConfig{File: f})
		require.NoError(t, err)
		lg.Info("loop")
		closeLog()
	}
	assert.LessOrEqual(t, openFDs(t), before+1)
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(zap.InfoLevel)

	SetLevel(zap.ErrorLevel)
	assert.False(t, L().Core().Enabled(zap.WarnLevel))
	assert.True(t, L().Core().Enabled(zap.ErrorLevel))

	SetLevel(zap.DebugLevel)
	assert.True(t, L().Core().Enabled(zap.DebugLevel))
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().Core().Enabled(zap.ErrorLevel))
}
