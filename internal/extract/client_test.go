package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-key", "gemini-1.5-flash", []string{"photo", "drone"})
	c.apiBase = server.URL
	return c
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestExtract_ParsesFieldBag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "2025-04-28")
		assert.Contains(t, req.Contents[0].Parts[0].Text, "photo, drone")

		w.Write([]byte(candidateResponse(`{"title":"Shoot","date":"2025-05-01","time":"14:00:00"}`)))
	})

	ref := time.Date(2025, 4, 28, 10, 0, 0, 0, time.UTC)
	fields, err := c.Extract(context.Background(), "shoot on may 1st at 2pm", ref)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"title": "Shoot",
		"date":  "2025-05-01",
		"time":  "14:00:00",
	}, fields)
}

func TestExtract_UnwrapsMarkdownFence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateResponse("```json\n{\"title\":\"Shoot\"}\n```")))
	})

	fields, err := c.Extract(context.Background(), "x", time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "Shoot"}, fields)
}

func TestExtract_EmptyObjectMeansNoEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateResponse("{}")))
	})

	fields, err := c.Extract(context.Background(), "hello there", time.Now())
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
		},
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad request"}}`))
			},
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":[]}`))
			},
		},
		{
			name: "non-JSON answer",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(candidateResponse("I cannot help with that.")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Extract(context.Background(), "x", time.Now())
			assert.Error(t, err)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"title":"x"}`,
			expected: `{"title":"x"}`,
		},
		{
			name:     "markdown fenced",
			input:    "```json\n{\"title\":\"x\"}\n```",
			expected: `{"title":"x"}`,
		},
		{
			name:     "surrounding prose",
			input:    "Here you go: {\"title\":\"x\"} hope that helps",
			expected: `{"title":"x"}`,
		},
		{
			name:     "nested braces",
			input:    `{"a":{"b":"c"}}`,
			expected: `{"a":{"b":"c"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, NewClient("key", "", nil).IsConfigured())
	assert.False(t, NewClient("", "", nil).IsConfigured())
}
