package service

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode discriminates the failure taxonomy. Every error this package
// raises carries one, so operational tooling can branch without string
// matching.
type ErrorCode string

const (
	CodeProcess     ErrorCode = "process_error"
	CodeTimeout     ErrorCode = "timeout"
	CodeHealthCheck ErrorCode = "health_check_exhausted"
	CodePlatform    ErrorCode = "platform_error"
	CodeService     ErrorCode = "service_error"
)

// ProcessError reports an OS refusal to spawn, terminate, or look up the
// service process.
type ProcessError struct {
	ProcessName string
	Op          string // start | stop | find
	Err         error
}

func (e *ProcessError) Code() ErrorCode { return CodeProcess }
func (e *ProcessError) Unwrap() error   { return e.Err }
func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %s failed for %q: %v", e.Op, e.ProcessName, e.Err)
}

// TimeoutError reports that the wall-clock health-wait budget elapsed.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Code() ErrorCode { return CodeTimeout }
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

// HealthCheckError reports that the attempt budget was exhausted without
// the wall-clock timeout having fired first.
type HealthCheckError struct {
	State    State
	Attempts int
}

func (e *HealthCheckError) Code() ErrorCode { return CodeHealthCheck }
func (e *HealthCheckError) Error() string {
	return fmt.Sprintf("service not healthy after %d attempts (state %s)", e.Attempts, e.State)
}

// PlatformError wraps an unclassified failure escaping a platform
// strategy, preserving the original cause. Already-typed errors are
// never double-wrapped.
type PlatformError struct {
	Platform string
	Op       string
	Err      error
}

func (e *PlatformError) Code() ErrorCode { return CodePlatform }
func (e *PlatformError) Unwrap() error   { return e.Err }
func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s platform %s failed: %v", e.Platform, e.Op, e.Err)
}

// ServiceError is a generic service-operation failure not otherwise
// classified.
type ServiceError struct {
	State State
	Err   error
}

func (e *ServiceError) Code() ErrorCode { return CodeService }
func (e *ServiceError) Unwrap() error   { return e.Err }
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service operation failed (state %s): %v", e.State, e.Err)
}

// isTyped reports whether err already belongs to the taxonomy, so the
// platform boundary re-throws it unchanged instead of wrapping again.
func isTyped(err error) bool {
	var pe *ProcessError
	var te *TimeoutError
	var he *HealthCheckError
	var fe *PlatformError
	var se *ServiceError
	return errors.As(err, &pe) || errors.As(err, &te) || errors.As(err, &he) ||
		errors.As(err, &fe) || errors.As(err, &se)
}
