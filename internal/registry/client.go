package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mariiahub/taxcore/internal/config"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/httpclient"
)

// LookupResult is the remote authority's verdict for an identifier.
type LookupResult struct {
	Active bool       `json:"active"`
	Name   string     `json:"name,omitempty"`
	AsOf   *time.Time `json:"as_of,omitempty"`
}

// Client looks up tax identifiers against the remote registry. Any transport
// failure, timeout or garbled response surfaces as ErrRegistryUnavailable;
// callers degrade confidence, they never fail the sale on it.
type Client interface {
	Lookup(ctx context.Context, identifier string) (*LookupResult, error)
}

type httpRegistryClient struct {
	client  httpclient.Client
	baseURL string
	timeout time.Duration
}

// NewHTTPClient creates a registry client with the configured bounded
// timeout and a single retry.
func NewHTTPClient(cfg config.RegistryConfig) Client {
	return &httpRegistryClient{
		client: httpclient.NewClientWithConfig(httpclient.ClientConfig{
			Timeout:  cfg.Timeout,
			RetryMax: 1,
		}),
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
	}
}

func (c *httpRegistryClient) Lookup(ctx context.Context, identifier string) (*LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/subjects/%s", c.baseURL, url.PathEscape(identifier)),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Tax registry could not be reached").
			Mark(ierr.ErrRegistryUnavailable)
	}

	if !resp.IsSuccess() {
		return nil, ierr.NewError("registry returned non-success status").
			WithHint("Tax registry could not be reached").
			WithReportableDetails(map[string]any{
				"status_code": resp.StatusCode,
			}).
			Mark(ierr.ErrRegistryUnavailable)
	}

	var result LookupResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		// A garbled response is indistinguishable from an outage for our
		// purposes: degrade, never guess.
		return nil, ierr.WithError(err).
			WithHint("Tax registry returned an unreadable response").
			Mark(ierr.ErrRegistryUnavailable)
	}

	return &result, nil
}
