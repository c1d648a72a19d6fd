package factory

import (
	"errors"
	"net/url"
	"strings"

	"github.com/verlane/ollamactl/internal/history"
	"github.com/verlane/ollamactl/internal/history/clickhouse"
	"github.com/verlane/ollamactl/internal/history/opensearch"
)

// NewSinkFromDSN creates a history sink based on DSN format.
// Supported formats:
//   - "clickhouse://host:port?database=db&table=table"
//   - "opensearch://host:port/index"
//   - "elasticsearch://host:port/index"
func NewSinkFromDSN(dsn string) (history.Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty DSN")
	}

	lower := strings.ToLower(dsn)

	if strings.HasPrefix(lower, "clickhouse://") {
		return parseClickHouseDSN(dsn)
	}

	if strings.HasPrefix(lower, "opensearch://") || strings.HasPrefix(lower, "elasticsearch://") {
		return parseOpenSearchDSN(dsn)
	}

	return nil, errors.New("unsupported history DSN: " + dsn)
}

func parseClickHouseDSN(dsn string) (history.Sink, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}

	host := u.Host
	if host == "" {
		host = "localhost:9000" // default ClickHouse native port
	}

	table := u.Query().Get("table")
	if table == "" {
		table = "service_history"
	}

	return clickhouse.New(host, table)
}

func parseOpenSearchDSN(dsn string) (history.Sink, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}

	// OpenSearch talks HTTP regardless of the DSN scheme.
	baseURL := "http://" + u.Host

	index := strings.Trim(u.Path, "/")
	if index == "" {
		index = "service-history"
	}

	return opensearch.New(baseURL, index), nil
}
