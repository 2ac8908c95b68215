package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()
	c, err := NewWithHTTPClient(Config{BaseURL: "http://ollama.test"}, &http.Client{Transport: rt})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGenerateSendsExpectedPayload(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/generate" || req.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(200, `{"response":"{\"charts\":[]}","done":true}`), nil
	})

	out, err := c.Generate(context.Background(), GenerateRequest{
		Model:       "llama3.2",
		Prompt:      "make charts",
		System:      "JSON only",
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"charts":[]}` {
		t.Fatalf("response = %q", out)
	}

	if captured["model"] != "llama3.2" || captured["prompt"] != "make charts" {
		t.Fatalf("payload = %v", captured)
	}
	if captured["stream"] != false {
		t.Fatal("stream must be disabled")
	}
	opts := captured["options"].(map[string]any)
	if opts["temperature"] != 0.3 || opts["num_predict"] != float64(2048) {
		t.Fatalf("options = %v", opts)
	}
	if captured["system"] != "JSON only" {
		t.Fatalf("system = %v", captured["system"])
	}
}

func TestGenerateRequiresModel(t *testing.T) {
	c := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	if _, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	c := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(500, `{"error":"model not loaded"}`), nil
	})
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "x"})
	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("error is %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != 500 || !strings.Contains(httpErr.Body, "not loaded") {
		t.Fatalf("err = %+v", httpErr)
	}
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/tags" || req.Method != http.MethodGet {
			t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
		return jsonResponse(200, `{"models":[{"name":"llama3.2","size":123},{"name":"mistral","size":456}]}`), nil
	})

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3.2" || models[1].Size != 456 {
		t.Fatalf("models = %+v", models)
	}
}

func TestPull(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/pull" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["name"] != "llama3.2" {
			t.Fatalf("body = %v", body)
		}
		// Progress stream is drained and discarded.
		return jsonResponse(200, "{\"status\":\"pulling\"}\n{\"status\":\"success\"}\n"), nil
	})

	if err := c.Pull(context.Background(), "llama3.2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealthy(t *testing.T) {
	up := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"models":[]}`), nil
	})
	if !up.Healthy(context.Background()) {
		t.Fatal("expected healthy")
	}

	down := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(502, "bad gateway"), nil
	})
	if down.Healthy(context.Background()) {
		t.Fatal("expected unhealthy")
	}
}
