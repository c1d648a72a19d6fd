package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultEndpoint is the inference server's model-listing path; it
	// answers quickly and only once the API is actually serving.
	DefaultEndpoint = "/api/tags"
	// DefaultPort is the conventional local inference server port.
	DefaultPort = 11434

	defaultRequestTimeout = 2 * time.Second
)

// Probe is a strategy that determines whether the managed service is
// reachable and responding. Implementations must be safe for concurrent
// use and must report failure as false, never as an error, so callers
// can poll without special-casing.
type Probe interface {
	// Check returns true if the service answered successfully.
	Check(ctx context.Context) bool
	// Describe returns a human-readable description of the probe target.
	Describe() string
}

// HTTPProbe checks liveness with a single bounded GET against the local
// inference server.
type HTTPProbe struct {
	url    string
	client *http.Client
}

// NewHTTPProbe builds a probe for 127.0.0.1:port. endpoint defaults to
// DefaultEndpoint, port to DefaultPort.
func NewHTTPProbe(port int, endpoint string) *HTTPProbe {
	if port <= 0 {
		port = DefaultPort
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPProbe{
		url:    fmt.Sprintf("http://127.0.0.1:%d%s", port, endpoint),
		client: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// NewHTTPProbeURL builds a probe against an explicit URL. Used by tests
// and by callers probing an externally configured endpoint.
func NewHTTPProbeURL(url string) *HTTPProbe {
	return &HTTPProbe{url: url, client: &http.Client{Timeout: defaultRequestTimeout}}
}

// Check performs one liveness request. Any transport error, timeout or
// non-2xx response yields false.
func (p *HTTPProbe) Check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (p *HTTPProbe) Describe() string { return "http:" + p.url }
