package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/regisync/regisync/internal/shared"
)

const defaultFetchTimeout = 30 * time.Second

// HTTPSource reads the feed from a CSV export URL, e.g. a Google Sheet
// published with output=csv.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

func (s *HTTPSource) FetchRows(ctx context.Context) ([][]string, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", shared.ErrSourceUnavailable, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	rows, err := parseCSV(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	return rows, nil
}
