package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// Adapter is an external-source connector. Search failures are reported as
// errors but the resolution engine treats them as a zero-result contribution;
// FetchDetail failures are all-or-nothing and surface to the caller.
type Adapter interface {
	// Source identifies which canonical-ID family this adapter serves.
	Source() content.SourceType

	// Search returns partial resources matching query, at most max.
	Search(ctx context.Context, query string, max int) ([]content.Resource, error)

	// FetchDetail returns the fully populated resource for a parsed id, or an
	// error wrapping content.ErrNotFound / content.ErrAdapterUnavailable.
	FetchDetail(ctx context.Context, ref content.ResourceRef) (*content.Resource, error)
}

// DefaultEUtilsBaseURL is the NCBI Entrez E-utilities endpoint.
const DefaultEUtilsBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultTimeout bounds every adapter HTTP call so a slow source cannot stall
// the engine.
const DefaultTimeout = 10 * time.Second

// Config holds the shared E-utilities client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// eutilsClient is the HTTP plumbing shared by the PubMed and Bookshelf
// adapters.
type eutilsClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newEUtilsClient(cfg Config) *eutilsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEUtilsBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &eutilsClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// get performs one E-utilities call and returns the raw body.
func (c *eutilsClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", content.ErrAdapterUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrAdapterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", content.ErrAdapterUnavailable, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", content.ErrAdapterUnavailable, err)
	}
	return body, nil
}

// esearchResult is the JSON envelope of an esearch.fcgi call.
type esearchResult struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}
