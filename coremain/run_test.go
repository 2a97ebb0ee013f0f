package coremain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pmkol/sllist/mlog"
	"github.com/pmkol/sllist/pkg/script"
)

func Test_loadConfig_include(t *testing.T) {
	cfg, fileUsed, err := loadConfig("testdata/scenarios.yaml")
	require.NoError(t, err)
	assert.Equal(t, "testdata/scenarios.yaml", fileUsed)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "int", cfg.Element)
	assert.Len(t, cfg.Steps, 9)

	require.NoError(t, mergeInclude(cfg, 0, []string{fileUsed}))
	require.Len(t, cfg.Steps, 12)
	assert.Equal(t, "add_last", cfg.Steps[0].Op)
	assert.Equal(t, "visit", cfg.Steps[3].Op)
	require.NotNil(t, cfg.Steps[10].Index)
	assert.Equal(t, 1, *cfg.Steps[10].Index)
	assert.Nil(t, cfg.Steps[11].Index)
}

func Test_loadConfig_errors(t *testing.T) {
	_, _, err := loadConfig("testdata/unknown_key.yaml")
	assert.Error(t, err)

	_, _, err = loadConfig("testdata/no_such_file.yaml")
	assert.Error(t, err)

	cfg, fileUsed, err := loadConfig("testdata/loop.yaml")
	require.NoError(t, err)
	err = mergeInclude(cfg, 0, []string{fileUsed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum include depth reached")
}

func Test_RunScript(t *testing.T) {
	cfg, fileUsed, err := loadConfig("testdata/scenarios.yaml")
	require.NoError(t, err)
	require.NoError(t, mergeInclude(cfg, 0, []string{fileUsed}))

	b := new(bytes.Buffer)
	require.NoError(t, RunScript(cfg, b))

	rep := new(script.Report)
	require.NoError(t, yaml.Unmarshal(b.Bytes(), rep))
	assert.Equal(t, 0, rep.Failed)
	assert.Len(t, rep.Steps, 12)
	assert.Equal(t, "1 2 3", rep.Steps[3].Text)
	assert.True(t, rep.Steps[11].Cycle)
}

func Test_RunScript_failed(t *testing.T) {
	cfg, _, err := loadConfig("testdata/failing.yaml")
	require.NoError(t, err)

	b := new(bytes.Buffer)
	err = RunScript(cfg, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, script.ErrExpectationFailed))

	rep := new(script.Report)
	require.NoError(t, yaml.Unmarshal(b.Bytes(), rep))
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, "7", rep.Final)
}

func Test_RunScript_badLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "loud"
	assert.Error(t, RunScript(cfg, new(bytes.Buffer)))
}

func Test_runCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.yaml")
	rootCmd.SetArgs([]string{"run", "-c", "testdata/scenarios.yaml", "-o", out})
	require.NoError(t, Run())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	rep := new(script.Report)
	require.NoError(t, yaml.Unmarshal(b, rep))
	assert.Equal(t, "int", rep.Element)
	assert.Equal(t, 0, rep.Failed)
}

func Test_runOnce_appliesLogLevel(t *testing.T) {
	defer mlog.SetLevel(zap.InfoLevel)
	mlog.SetLevel(zap.InfoLevel)

	fileUsed, err := runOnce(&runFlags{c: "testdata/scenarios.yaml"}, new(bytes.Buffer))
	require.NoError(t, err)
	assert.Equal(t, "testdata/scenarios.yaml", fileUsed)
	assert.False(t, mlog.L().Core().Enabled(zap.InfoLevel))
	assert.True(t, mlog.L().Core().Enabled(zap.ErrorLevel))
}

func Test_RunScript_closesLogFile(t *testing.T) {
	fds, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("cannot list open fds:", err)
	}
	before := len(fds)

	cfg := &Config{Steps: []script.Step{{Op: "add_last", Value: 1}}}
	cfg.Log.Level = "error"
	cfg.Log.File = filepath.Join(t.TempDir(), "sllist.log")
	for i := 0; i < 50; i++ {
		require.NoError(t, RunScript(cfg, new(bytes.Buffer)))
	}

	fds, err = os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(fds), before+1)
}

func Test_watchScript(t *testing.T) {
	f := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(f, []byte("steps: []\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan struct{}, 8)
	errCh := make(chan error, 1)
	go func() {
		errCh <- watchScript(ctx, f, 10*time.Millisecond, mlog.Nop(), func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}()

	// Keep writing until the watcher is registered and fires.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-fired:
			break loop
		case <-tick.C:
			require.NoError(t, os.WriteFile(f, []byte("steps: []\n"), 0o644))
		case <-deadline:
			t.Fatal("watcher did not fire")
		}
	}

	cancel()
	assert.NoError(t, <-errCh)
}

func Test_watchScript_missingFile(t *testing.T) {
	err := watchScript(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), time.Millisecond, mlog.Nop(), func() {})
	assert.Error(t, err)
}
