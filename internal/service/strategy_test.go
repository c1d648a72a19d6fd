package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verlane/ollamactl/internal/procctl"
)

// fakeController scripts the OS boundary for both platforms.
type fakeController struct {
	mu sync.Mutex

	findInfo *procctl.ProcessInfo
	findErr  error
	startErr error
	stopErr  error
	forceErr error

	startCalls int
	stopCalls  int
	forceCalls int
	started    string
}

func (c *fakeController) FindProcess(_ context.Context, _ string) (*procctl.ProcessInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findInfo, c.findErr
}

func (c *fakeController) StartProcess(_ context.Context, _ string, command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startCalls++
	c.started = command
	return c.startErr
}

func (c *fakeController) StopProcess(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCalls++
	return c.stopErr
}

func (c *fakeController) ForceStopProcess(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forceCalls++
	return c.forceErr
}

func (c *fakeController) IsProcessRunning(_ context.Context, _ string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findInfo != nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{Command: "ollama serve"}.Normalized()
}

func newTestStrategy(t *testing.T, platform string, ctrl procctl.Controller) *Strategy {
	t.Helper()
	s, err := NewStrategy(platform, testConfig(), ctrl, discardLogger())
	require.NoError(t, err)
	return s
}

func TestStartServiceSpawnsDetached(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestStrategy(t, "unix", ctrl)

	require.NoError(t, s.StartService(context.Background(), testConfig()))
	require.Equal(t, 1, ctrl.startCalls)
	require.Equal(t, "ollama serve", ctrl.started)
	require.Equal(t, 0, ctrl.stopCalls)
}

func TestStartServiceReconcilesStrayProcess(t *testing.T) {
	ctrl := &fakeController{findInfo: &procctl.ProcessInfo{PID: 42, Name: "ollama"}}
	s := newTestStrategy(t, "unix", ctrl)

	require.NoError(t, s.StartService(context.Background(), testConfig()))
	require.Equal(t, 1, ctrl.stopCalls)
	require.Equal(t, 1, ctrl.startCalls)
}

func TestStartServiceStrayVanishedBetweenFindAndStop(t *testing.T) {
	ctrl := &fakeController{
		findInfo: &procctl.ProcessInfo{PID: 42, Name: "ollama"},
		stopErr:  procctl.ErrProcessNotFound,
	}
	s := newTestStrategy(t, "unix", ctrl)

	require.NoError(t, s.StartService(context.Background(), testConfig()))
	require.Equal(t, 1, ctrl.startCalls)
}

func TestStartServiceFindFailure(t *testing.T) {
	ctrl := &fakeController{findErr: errors.New("permission denied")}
	s := newTestStrategy(t, "unix", ctrl)

	err := s.StartService(context.Background(), testConfig())
	var pe *ProcessError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "find", pe.Op)
	require.Equal(t, 0, ctrl.startCalls)
}

func TestStartServiceSpawnFailure(t *testing.T) {
	ctrl := &fakeController{startErr: errors.New("exec format error")}
	s := newTestStrategy(t, "unix", ctrl)

	err := s.StartService(context.Background(), testConfig())
	var pe *ProcessError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "start", pe.Op)
	require.Equal(t, CodeProcess, pe.Code())
}

func TestStopServiceGraceful(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestStrategy(t, "unix", ctrl)

	require.NoError(t, s.StopService(context.Background()))
	require.Equal(t, 1, ctrl.stopCalls)
	require.Equal(t, 0, ctrl.forceCalls)
}

func TestStopServiceMissingProcessIsSuccess(t *testing.T) {
	ctrl := &fakeController{stopErr: procctl.ErrProcessNotFound}
	s := newTestStrategy(t, "unix", ctrl)

	require.NoError(t, s.StopService(context.Background()))
	require.Equal(t, 0, ctrl.forceCalls)
}

func TestStopServiceEscalatesOnce(t *testing.T) {
	ctrl := &fakeController{stopErr: errors.New("graceful refused")}
	s := newTestStrategy(t, "unix", ctrl)

	require.NoError(t, s.StopService(context.Background()))
	require.Equal(t, 1, ctrl.stopCalls)
	require.Equal(t, 1, ctrl.forceCalls)
}

func TestStopServiceForcedFailure(t *testing.T) {
	ctrl := &fakeController{
		stopErr:  errors.New("graceful refused"),
		forceErr: errors.New("forced refused"),
	}
	s := newTestStrategy(t, "unix", ctrl)

	err := s.StopService(context.Background())
	var pe *ProcessError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "stop", pe.Op)
}

func TestFindPID(t *testing.T) {
	ctrl := &fakeController{findInfo: &procctl.ProcessInfo{PID: 77, Name: "ollama"}}
	s := newTestStrategy(t, "unix", ctrl)
	require.Equal(t, 77, s.FindPID(context.Background()))

	ctrl.findInfo = nil
	require.Equal(t, 0, s.FindPID(context.Background()))

	ctrl.findErr = errors.New("listing failed")
	require.Equal(t, 0, s.FindPID(context.Background()))
}

func TestWrapPreservesTypedErrors(t *testing.T) {
	s := newTestStrategy(t, "unix", &fakeController{})

	typed := &TimeoutError{Op: "x", Timeout: 1}
	require.Same(t, typed, s.wrap("start", typed).(*TimeoutError))

	plain := errors.New("plain")
	var fe *PlatformError
	require.ErrorAs(t, s.wrap("start", plain), &fe)
	require.Equal(t, "unix", fe.Platform)
	require.ErrorIs(t, fe, plain)

	require.NoError(t, s.wrap("start", nil))
}
