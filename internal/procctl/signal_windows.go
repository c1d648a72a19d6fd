//go:build windows

package procctl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// StopProcess asks the named process to close via taskkill by image
// name. Without /F this is Windows' graceful stop: the process receives
// WM_CLOSE and may refuse.
func (c *OSController) StopProcess(ctx context.Context, name string) error {
	return c.taskkill(ctx, name, false)
}

// ForceStopProcess terminates the named process unconditionally
// (taskkill /F).
func (c *OSController) ForceStopProcess(ctx context.Context, name string) error {
	return c.taskkill(ctx, name, true)
}

func (c *OSController) taskkill(ctx context.Context, name string, force bool) error {
	image := name
	if !strings.HasSuffix(strings.ToLower(image), ".exe") {
		image += ".exe"
	}
	args := []string{"/IM", image}
	if force {
		args = append([]string{"/F"}, args...)
	}
	// #nosec G204 -- image name comes from validated service config
	cmd := exec.CommandContext(ctx, "taskkill", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		// taskkill exits 128 when no matching process exists.
		if strings.Contains(out.String(), "not found") {
			return ErrProcessNotFound
		}
		return fmt.Errorf("taskkill %s: %w: %s", image, err, strings.TrimSpace(out.String()))
	}
	c.lg.Debug("taskkill issued", "image", image, "force", force)
	return nil
}
