package service

import (
	"fmt"
	"time"

	"github.com/verlane/ollamactl/internal/health"
	"github.com/verlane/ollamactl/internal/logger"
)

// State is the lifecycle state of the managed service.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateError    State = "error"
)

// Status is a snapshot of the managed service. Callers always receive
// copies; only the manager mutates the live record. Running is true iff
// State == StateRunning.
type Status struct {
	Running   bool      `json:"running"`
	State     State     `json:"state"`
	PID       int       `json:"pid,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthCheckConfig bounds the health-wait polling budget.
type HealthCheckConfig struct {
	Timeout     time.Duration `toml:"timeout" mapstructure:"timeout"`
	Interval    time.Duration `toml:"interval" mapstructure:"interval"`
	MaxAttempts int           `toml:"max_attempts" mapstructure:"max_attempts"`
	Endpoint    string        `toml:"endpoint" mapstructure:"endpoint"`
}

// EffectiveMaxAttempts resolves the attempt budget: explicit value, or
// Timeout/Interval when unset.
func (h HealthCheckConfig) EffectiveMaxAttempts() int {
	if h.MaxAttempts > 0 {
		return h.MaxAttempts
	}
	if h.Interval <= 0 {
		return 0
	}
	return int(h.Timeout / h.Interval)
}

// Config is the immutable input describing the service to supervise.
type Config struct {
	// Command launches the service, e.g. "ollama serve".
	Command string `toml:"command" mapstructure:"command"`
	// ProcessName is the executable name used for lookup and
	// termination. Defaults to the first token of Command.
	ProcessName string `toml:"process_name" mapstructure:"process_name"`
	// Port the service listens on locally.
	Port        int               `toml:"port" mapstructure:"port"`
	HealthCheck HealthCheckConfig `toml:"health_check" mapstructure:"health_check"`
	// Log configures where the spawned service's output is drained.
	Log logger.Config `toml:"log" mapstructure:"log"`
}

// Normalized returns a copy with defaults applied.
func (c Config) Normalized() Config {
	out := c
	if out.Command == "" {
		out.Command = "ollama serve"
	}
	if out.ProcessName == "" {
		out.ProcessName = firstToken(out.Command)
	}
	if out.Port <= 0 {
		out.Port = health.DefaultPort
	}
	if out.HealthCheck.Endpoint == "" {
		out.HealthCheck.Endpoint = health.DefaultEndpoint
	}
	if out.HealthCheck.Timeout <= 0 {
		out.HealthCheck.Timeout = 30 * time.Second
	}
	if out.HealthCheck.Interval <= 0 {
		out.HealthCheck.Interval = time.Second
	}
	return out
}

// Validate checks the health budget: interval > 0 and
// timeout >= interval.
func (c Config) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("service command must not be empty")
	}
	if c.HealthCheck.Interval <= 0 {
		return fmt.Errorf("health_check.interval must be > 0, got %s", c.HealthCheck.Interval)
	}
	if c.HealthCheck.Timeout < c.HealthCheck.Interval {
		return fmt.Errorf("health_check.timeout (%s) must be >= interval (%s)",
			c.HealthCheck.Timeout, c.HealthCheck.Interval)
	}
	return nil
}

func firstToken(s string) string {
	for i, r := range s {
		if r == ' ' || r == '\t' {
			return s[:i]
		}
	}
	return s
}
