package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/desertthunder/scanarr/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient, nil)

			if srv.BaseURL() != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", srv.BaseURL())
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil, nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Sends Configured Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/api/v1/test" {
					t.Errorf("expected path '/api/v1/test', got %s", r.URL.Path)
				}
				if got := r.Header.Get("X-Api-Key"); got != "secret" {
					t.Errorf("expected api key header, got %q", got)
				}
				if r.Header.Get("Content-Type") != "" {
					t.Error("expected no Content-Type without a body")
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL+"/api/v1", nil, map[string]string{"X-Api-Key": "secret"})
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected OK response, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Non-2xx Is Not An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() {
				t.Error("expected 503 to not be OK")
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil, nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil {
				t.Fatal("expected error for invalid URL")
			}
			if !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := NewAPIService("http://example.com", client, nil)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error for failed request")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client, nil)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error for failed body read")
			}
			if !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewAPIService(server.URL, nil, nil)
			if _, err := srv.Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})

		t.Run("Response Headers Are Preserved", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Custom-Header", "test-value")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("test"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Headers.Get("X-Custom-Header") != "test-value" {
				t.Errorf("expected custom header 'test-value', got %s", resp.Headers.Get("X-Custom-Header"))
			}
		})
	})

	t.Run("Post And Put", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut} {
			t.Run(method, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Method != method {
						t.Errorf("expected %s method, got %s", method, r.Method)
					}
					if r.Header.Get("Content-Type") != "application/json" {
						t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
					}

					body, _ := io.ReadAll(r.Body)
					var data map[string]any
					if err := json.Unmarshal(body, &data); err != nil {
						t.Errorf("failed to unmarshal request body: %v", err)
					}
					if data["monitored"] != true {
						t.Errorf("expected monitored=true in body, got %v", data)
					}

					w.WriteHeader(http.StatusCreated)
					json.NewEncoder(w).Encode(map[string]int{"id": 123})
				}))
				defer server.Close()

				srv := NewAPIService(server.URL, nil, nil)
				payload := map[string]any{"monitored": true}

				var resp *APIResponse
				var err error
				if method == http.MethodPost {
					resp, err = srv.Post(context.Background(), "/test", payload)
				} else {
					resp, err = srv.Put(context.Background(), "/test", payload)
				}

				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if resp.StatusCode != http.StatusCreated {
					t.Errorf("expected status 201, got %d", resp.StatusCode)
				}
			})
		}

		t.Run("Unencodable Body", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil, nil)
			_, err := srv.Post(context.Background(), "/test", map[string]any{"ch": make(chan int)})

			if err == nil || !strings.Contains(err.Error(), "failed to encode request body") {
				t.Errorf("expected encode error, got %v", err)
			}
		})
	})

	t.Run("APIResponse Decode", func(t *testing.T) {
		t.Run("Keeps Numbers Exact", func(t *testing.T) {
			resp := &APIResponse{Body: []byte(`{"id": 9007199254740993}`)}

			var v map[string]any
			if err := resp.Decode(&v); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			n, ok := v["id"].(json.Number)
			if !ok {
				t.Fatalf("expected json.Number, got %T", v["id"])
			}
			if n.String() != "9007199254740993" {
				t.Errorf("expected exact number, got %s", n)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			resp := &APIResponse{Body: []byte("not json")}

			var v map[string]any
			if err := resp.Decode(&v); err == nil {
				t.Error("expected decode error")
			}
		})
	})
}
