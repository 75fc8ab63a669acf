package llamacpp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/menta2k/sign-composer/pkg/modelout"
)

func completionServer(t *testing.T, reply any, inspect func(*http.Request, ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != completionsPath {
			http.NotFound(w, r)
			return
		}
		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if inspect != nil {
			inspect(r, req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"model":   req.Model,
			"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
}

func TestAnalyzeImage(t *testing.T) {
	srv := completionServer(t, `{"description":"NDA","suggestedPlacements":[{"x":200,"y":850},{"x":700,"y":850}]}`,
		func(r *http.Request, req ChatCompletionRequest) {
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Expected bearer token, got %q", got)
			}
			if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
				t.Errorf("Expected json_object response format, got %+v", req.ResponseFormat)
			}
			parts, _ := req.Messages[0].Content.([]any)
			if len(parts) != 2 {
				t.Fatalf("Expected text and image parts, got %d", len(parts))
			}
			image := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
			if !strings.HasPrefix(image, "data:image/png;base64,") {
				t.Errorf("Expected PNG data URL, got %q", image)
			}
		})
	defer srv.Close()

	c, _ := NewClient(srv.URL+"/", WithAPIKey("secret"))
	result, err := c.AnalyzeImage(context.Background(), "qwen2-vl", "describe", "aGVsbG8=")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if result.Description != "NDA" || len(result.SuggestedPlacements) != 2 {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestAnalyzeImageWithoutAPIKey(t *testing.T) {
	srv := completionServer(t, `{"description":"x","suggestedPlacements":[]}`, func(r *http.Request, _ ChatCompletionRequest) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Expected no Authorization header, got %q", got)
		}
	})
	defer srv.Close()

	c, _ := NewClient(srv.URL + completionsPath)
	if _, err := c.AnalyzeImage(context.Background(), "m", "p", "aGVsbG8="); err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
}

func TestAnalyzeImageContentParts(t *testing.T) {
	reply := []any{map[string]any{"type": "text", "text": `{"description":"Quote","suggestedPlacements":[]}`}}
	srv := completionServer(t, reply, nil)
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	result, err := c.AnalyzeImage(context.Background(), "m", "p", "aGVsbG8=")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if result.Description != "Quote" {
		t.Errorf("Unexpected description %q", result.Description)
	}
}

func TestAnalyzeImageMalformed(t *testing.T) {
	srv := completionServer(t, "I am unable to read this document.", nil)
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, err := c.AnalyzeImage(context.Background(), "m", "p", "aGVsbG8=")
	if !errors.Is(err, modelout.ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestAnalyzeImageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, err := c.AnalyzeImage(context.Background(), "m", "p", "aGVsbG8=")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.baseURL != defaultServerURL {
		t.Errorf("Expected default URL, got %q", c.baseURL)
	}
}
