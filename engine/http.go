package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPConfig configures an engine reached through a model-serving sidecar.
type HTTPConfig struct {
	// BaseURL is the sidecar root, e.g. "http://localhost:8008".
	BaseURL string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Model is the model name forwarded to the sidecar.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout bounds each request; 0 means no timeout.
	Timeout time.Duration
}

// NewHTTP returns an M2M100 engine that calls POST {BaseURL}/encode,
// /generate and /decode.
func NewHTTP(cfg HTTPConfig) (*M2M100, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("engine URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid engine URL %q: %w", cfg.BaseURL, err)
	}

	t := &httpTransport{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  makeHTTPClient(cfg.Proxy, cfg.Timeout),
	}
	return newM2M100(t, cfg.Model), nil
}

type httpTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func (t *httpTransport) call(ctx context.Context, op string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", op, err)
	}

	endpoint := t.baseURL + "/" + op
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", op, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", op, httpResp.StatusCode, truncate(string(respBody), 500))
	}

	if err := json.Unmarshal(respBody, resp); err != nil {
		return fmt.Errorf("invalid %s response: %w", op, err)
	}
	return nil
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// --proxy wins over HTTP_PROXY/HTTPS_PROXY
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
