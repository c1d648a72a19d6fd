package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verlane/ollamactl/internal/history"
)

func TestNewSinkFromDSNEmpty(t *testing.T) {
	_, err := NewSinkFromDSN("")
	require.Error(t, err)
	_, err = NewSinkFromDSN("   ")
	require.Error(t, err)
}

func TestNewSinkFromDSNUnsupported(t *testing.T) {
	_, err := NewSinkFromDSN("mysql://localhost/db")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported")
}

func TestNewSinkFromDSNOpenSearch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	s, err := NewSinkFromDSN("opensearch://" + host + "/svc-events")
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), history.Event{Type: history.EventTransition}))
	require.Equal(t, "/svc-events/_doc", gotPath)
}

func TestNewSinkFromDSNOpenSearchDefaultIndex(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	s, err := NewSinkFromDSN("opensearch://" + host)
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), history.Event{Type: history.EventTransition}))
	require.Equal(t, "/service-history/_doc", gotPath)
}

func TestNewSinkFromDSNClickHouseUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection attempt in short mode")
	}
	// No ClickHouse listening here; New must surface the ping failure.
	_, err := NewSinkFromDSN("clickhouse://127.0.0.1:1?table=history")
	require.Error(t, err)
}
