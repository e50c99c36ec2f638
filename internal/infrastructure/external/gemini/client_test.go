package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/port"
)

func testRequest() port.InferenceRequest {
	return port.InferenceRequest{
		SystemInstruction: "You are an expert insurance document analyst.",
		TaskPrompt:        "Extract the data.",
		Document:          port.Document{MediaType: "application/pdf", Data: []byte("%PDF-1.4")},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"insured": map[string]any{"type": []any{"string", "null"}},
			},
			"required":             []any{"insured"},
			"additionalProperties": false,
		},
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"insured\":"},{"text":"\"Acme Ltd\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Model: "gemini-test"}, zap.NewNop())

	text, err := c.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"insured":"Acme Ltd"}`, text)

	parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "application/pdf", inline["mimeType"])
	assert.Equal(t, "JVBERi0xLjQ=", inline["data"])
	assert.Equal(t, "Extract the data.", parts[1].(map[string]any)["text"])

	sys := body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Contains(t, sys["text"], "insurance document analyst")

	gen := body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", gen["responseMimeType"])
	schema := gen["responseSchema"].(map[string]any)
	assert.Equal(t, "OBJECT", schema["type"])
	assert.NotContains(t, schema, "additionalProperties")
	insured := schema["properties"].(map[string]any)["insured"].(map[string]any)
	assert.Equal(t, "STRING", insured["type"])
	assert.Equal(t, true, insured["nullable"])
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(Config{APIKey: "bad", BaseURL: srv.URL}, nil).Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini status 400")
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	text, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerate_BlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Generate(context.Background(), testRequest())
	assert.ErrorContains(t, err, "SAFETY")
}

func TestHasCredential(t *testing.T) {
	assert.False(t, NewClient(Config{APIKey: "  "}, nil).HasCredential())
	assert.True(t, NewClient(Config{APIKey: "k"}, nil).HasCredential())
}

func TestToResponseSchema(t *testing.T) {
	out := ToResponseSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": []string{"null", "string"}},
			"b": map[string]any{"type": "integer"},
		},
		"required": []string{"b", "a"},
	})

	assert.Equal(t, "OBJECT", out["type"])
	assert.Equal(t, []string{"b", "a"}, out["propertyOrdering"])
	a := out["properties"].(map[string]any)["a"].(map[string]any)
	assert.Equal(t, "STRING", a["type"])
	assert.Equal(t, true, a["nullable"])
	b := out["properties"].(map[string]any)["b"].(map[string]any)
	assert.Equal(t, "INTEGER", b["type"])
	assert.NotContains(t, b, "nullable")

	assert.Nil(t, ToResponseSchema(nil))
}

func TestGenerate_AcceptsQualifiedModelName(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"insured\":null}"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", BaseURL: srv.URL, Model: "models/gemini-test"}, nil)
	_, err := c.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-test:generateContent", path)
}
