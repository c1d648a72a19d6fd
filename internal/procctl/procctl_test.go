package procctl

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verlane/ollamactl/internal/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMatchName(t *testing.T) {
	assert.True(t, matchName("ollama", "ollama"))
	assert.False(t, matchName("ollama2", "ollama"))
	if runtime.GOOS == "windows" {
		assert.True(t, matchName("Ollama.exe", "ollama"))
		assert.True(t, matchName("OLLAMA", "ollama.exe"))
	} else {
		assert.False(t, matchName("Ollama", "ollama"))
	}
}

func TestBuildCommandPlain(t *testing.T) {
	cmd := buildCommand("ollama serve")
	require.NotEmpty(t, cmd.Args)
	assert.Equal(t, []string{"ollama", "serve"}, cmd.Args)
}

func TestBuildCommandShellMetachars(t *testing.T) {
	cmd := buildCommand("ollama serve > /dev/null")
	if runtime.GOOS == "windows" {
		assert.Equal(t, "cmd", filepath.Base(cmd.Args[0]))
	} else {
		assert.Equal(t, "/bin/sh", cmd.Args[0])
		assert.Equal(t, "-c", cmd.Args[1])
	}
}

func TestBuildCommandEmpty(t *testing.T) {
	cmd := buildCommand("   ")
	require.NotEmpty(t, cmd.Args)
}

func TestFindProcessSelf(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	name := filepath.Base(exe)

	c := New(logger.Config{}, testLogger())
	info, err := c.FindProcess(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, info, "the test binary itself must be discoverable")
	assert.True(t, c.IsProcessRunning(context.Background(), name))
}

func TestFindProcessAbsent(t *testing.T) {
	c := New(logger.Config{}, testLogger())
	info, err := c.FindProcess(context.Background(), "no-such-process-zzqq")
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.False(t, c.IsProcessRunning(context.Background(), "no-such-process-zzqq"))
}

func TestStopProcessNotFound(t *testing.T) {
	c := New(logger.Config{}, testLogger())
	err := c.StopProcess(context.Background(), "no-such-process-zzqq")
	assert.ErrorIs(t, err, ErrProcessNotFound)
	err = c.ForceStopProcess(context.Background(), "no-such-process-zzqq")
	assert.ErrorIs(t, err, ErrProcessNotFound)
}

func TestStartProcessWritesLogs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on /bin/sh")
	}
	dir := t.TempDir()
	c := New(logger.Config{Dir: dir}, testLogger())

	err := c.StartProcess(context.Background(), "echoer", "sh -c 'echo hello-out; echo hello-err 1>&2'")
	require.NoError(t, err)

	// The reaper closes the writers after the child exits.
	require.Eventually(t, func() bool {
		b, err := os.ReadFile(filepath.Join(dir, "echoer.stdout.log"))
		return err == nil && len(b) > 0
	}, 3*time.Second, 50*time.Millisecond)

	b, err := os.ReadFile(filepath.Join(dir, "echoer.stdout.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello-out")
}

func TestStartProcessBadBinary(t *testing.T) {
	c := New(logger.Config{}, testLogger())
	err := c.StartProcess(context.Background(), "bogus", "definitely-not-a-binary-zzqq")
	require.Error(t, err)
	var ee *exec.Error
	assert.ErrorAs(t, err, &ee)
}

func TestStopProcessTerminatesSpawned(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sleep binary")
	}
	dir := t.TempDir()
	c := New(logger.Config{Dir: dir}, testLogger())

	require.NoError(t, c.StartProcess(context.Background(), "sleeper", "sleep 30"))
	require.Eventually(t, func() bool {
		return c.IsProcessRunning(context.Background(), "sleep")
	}, 2*time.Second, 50*time.Millisecond)

	require.NoError(t, c.StopProcess(context.Background(), "sleep"))
	assert.Eventually(t, func() bool {
		return !c.IsProcessRunning(context.Background(), "sleep")
	}, 3*time.Second, 50*time.Millisecond)
}
