package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	assert.Error(t, err)
}

func TestLocateFaces(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+DefaultModel+":generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"faces":[]}`}},
				},
			}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), "test-key", srv.URL)
	require.NoError(t, err)

	reply, err := c.LocateFaces(context.Background(), "", "find faces", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, `{"faces":[]}`, reply)

	genCfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
}

func TestLocateFacesBadImage(t *testing.T) {
	c, err := NewClient(context.Background(), "test-key", "http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.LocateFaces(context.Background(), "", "find faces", "!!!")
	assert.Error(t, err)
}
