package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds webhook calls and wizard submissions.
const DefaultTimeout = 15 * time.Second

// userAgent is sent on outbound requests that don't set their own.
const userAgent = "axioniz-api/1.0"

// Client is the subset of *http.Client used for outbound calls.
type Client interface {
	Get(url string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

type standardClient struct {
	client *http.Client
}

// NewStandardClient returns a Client with DefaultTimeout.
func NewStandardClient() Client {
	return NewClientWithTimeout(DefaultTimeout)
}

func NewClientWithTimeout(timeout time.Duration) Client {
	return &standardClient{client: &http.Client{Timeout: timeout}}
}

func (c *standardClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *standardClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return c.client.Do(req)
}
