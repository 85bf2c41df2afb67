package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProxyFunc_ExplicitSettings(t *testing.T) {
	proxy := proxyFunc(Config{
		HTTPProxy:  "http://proxy.internal:3128",
		HTTPSProxy: "http://secure-proxy.internal:3128",
		NoProxy:    "api.local",
	})

	tests := []struct {
		url  string
		want string
	}{
		{"http://api.example.com/v1", "http://proxy.internal:3128"},
		{"https://api.example.com/v1", "http://secure-proxy.internal:3128"},
		{"https://api.local/v1", ""},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(http.MethodGet, tt.url, nil)
		if err != nil {
			t.Fatalf("NewRequest(%s): %v", tt.url, err)
		}
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s): %v", tt.url, err)
		}

		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.url, gotStr, tt.want)
		}
	}
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	client := newHTTPClient(Config{}, 0)
	if client.Timeout != 0 {
		t.Errorf("Expected no client timeout, got %v", client.Timeout)
	}
	if _, ok := client.Transport.(*http.Transport); !ok {
		t.Errorf("Expected *http.Transport, got %T", client.Transport)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("Expected custom header to be forwarded")
		}
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
			return
		}
		_, _ = w.Write([]byte(`{"value": "ok"}`))
	}))
	defer server.Close()

	client := newHTTPClient(Config{}, 0)
	headers := map[string]string{"X-Test": "yes"}

	var out struct {
		Value string `json:"value"`
	}
	if err := postJSON(context.Background(), client, server.URL+"/ok", headers, map[string]string{"q": "1"}, &out, nil); err != nil {
		t.Fatalf("postJSON: %v", err)
	}
	if out.Value != "ok" {
		t.Errorf("Expected decoded value 'ok', got %q", out.Value)
	}

	err := postJSON(context.Background(), client, server.URL+"/fail", headers, nil, &out, func([]byte) string { return "" })
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *apiError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "upstream down" {
		t.Errorf("Unexpected api error: %+v", apiErr)
	}
}
