package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// proxyFunc resolves the proxy for a request. Explicit settings win; unset
// fields fall back to HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func proxyFunc(config Config) func(*http.Request) (*url.URL, error) {
	if config.HTTPProxy == "" && config.HTTPSProxy == "" && config.NoProxy == "" {
		return http.ProxyFromEnvironment
	}

	env := httpproxy.FromEnvironment()
	if config.HTTPProxy != "" {
		env.HTTPProxy = config.HTTPProxy
	}
	if config.HTTPSProxy != "" {
		env.HTTPSProxy = config.HTTPSProxy
	}
	if config.NoProxy != "" {
		env.NoProxy = config.NoProxy
	}

	resolve := env.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return resolve(req.URL)
	}
}

// newHTTPClient builds the client shared by HTTP-based providers.
// A zero timeout leaves deadlines to the request context.
func newHTTPClient(config Config, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(config)

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// apiError is a non-200 reply from a provider endpoint
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// postJSON sends payload to url and decodes a 200 reply into out. Any other
// status becomes an *apiError; describe pulls a readable message out of the
// error body and may return "" to fall back to the raw body.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any, describe func([]byte) string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if describe != nil {
			msg = describe(respBody)
		}
		if msg == "" {
			msg = string(respBody)
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
