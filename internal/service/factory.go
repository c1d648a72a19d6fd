package service

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/verlane/ollamactl/internal/procctl"
)

// NewStrategy selects the strategy for platform ("unix" or "windows";
// empty means the running OS). The explicit platform parameter exists
// for tests exercising the other platform's conventions with a fake
// controller. Business logic never branches on the platform itself:
// everything OS-specific is encoded here once, at construction time.
func NewStrategy(platform string, cfg Config, ctrl procctl.Controller, lg *slog.Logger) (*Strategy, error) {
	p, err := normalizePlatform(platform)
	if err != nil {
		return nil, err
	}
	if lg == nil {
		lg = slog.Default()
	}
	name := cfg.ProcessName
	if p == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return &Strategy{platform: p, procName: name, ctrl: ctrl, lg: lg}, nil
}

func normalizePlatform(platform string) (string, error) {
	if platform == "" {
		platform = runtime.GOOS
	}
	switch platform {
	case "windows":
		return "windows", nil
	case "unix", "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return "unix", nil
	default:
		return "", fmt.Errorf("unsupported platform %q", platform)
	}
}
