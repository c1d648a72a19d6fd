package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verlane/ollamactl/internal/llm"
	"github.com/verlane/ollamactl/internal/service"
)

// RegisterBuiltins wires the lifecycle tools a chat session gets by
// default: status, start, stop, and model listing.
func RegisterBuiltins(r *Registry, mgr *service.Manager, client *llm.Client) error {
	noArgs := map[string]any{"type": "object", "properties": map[string]any{}}

	builtins := []Tool{
		{
			Name:        "service_status",
			Description: "Report the current state of the local inference server (running, stopped, error) with PID and last error.",
			Parameters:  noArgs,
			Handler: func(ctx context.Context, _ map[string]any) (string, error) {
				st := mgr.Status(ctx)
				b, err := json.Marshal(st)
				if err != nil {
					return "", err
				}
				return string(b), nil
			},
		},
		{
			Name:        "start_service",
			Description: "Start the local inference server and wait until it answers health checks.",
			Parameters:  noArgs,
			Handler: func(ctx context.Context, _ map[string]any) (string, error) {
				if err := mgr.StartService(ctx); err != nil {
					return "", err
				}
				return "service started and healthy", nil
			},
		},
		{
			Name:        "stop_service",
			Description: "Stop the local inference server and confirm it is down.",
			Parameters:  noArgs,
			Handler: func(ctx context.Context, _ map[string]any) (string, error) {
				if err := mgr.StopService(ctx); err != nil {
					return "", err
				}
				return "service stopped", nil
			},
		},
		{
			Name:        "list_models",
			Description: "List the models available on the inference server.",
			Parameters:  noArgs,
			Handler: func(ctx context.Context, _ map[string]any) (string, error) {
				models, err := client.ListModels(ctx)
				if err != nil {
					return "", err
				}
				if len(models) == 0 {
					return "no models installed", nil
				}
				names := make([]string, len(models))
				for i, m := range models {
					names[i] = m.Name
				}
				return strings.Join(names, ", "), nil
			},
		},
	}

	for _, t := range builtins {
		if err := r.Register(t); err != nil {
			return fmt.Errorf("register builtin: %w", err)
		}
	}
	return nil
}
