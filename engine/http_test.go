package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSidecar serves /encode, /generate and /decode for a toy vocabulary.
func fakeSidecar(t *testing.T, wantKey string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/encode", func(w http.ResponseWriter, r *http.Request) {
		if wantKey != "" && r.Header.Get("Authorization") != "Bearer "+wantKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req encodeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en", req.SrcLang)
		assert.Equal(t, DefaultModel, req.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{"input_ids": []int{128022, 42, 2}})
	})
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{128022, 42, 2}, req.InputIDs)
		_ = json.NewEncoder(w).Encode(map[string]any{"sequences": [][]int{{2, req.ForcedBOSTokenID, 99, 2}}})
	})
	mux.HandleFunc("/decode", func(w http.ResponseWriter, r *http.Request) {
		var req decodeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.SkipSpecialTokens)
		text := map[int]string{128023: "hola", 128028: "bonjour"}[req.IDs[1]]
		_ = json.NewEncoder(w).Encode(map[string]any{"text": text})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPEngine_Translate(t *testing.T) {
	srv := fakeSidecar(t, "secret")

	e, err := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/", APIKey: "secret"})
	require.NoError(t, err)
	require.NoError(t, e.SetSourceLanguage("en"))

	got, err := Translate(context.Background(), e, "hello", "es")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	got, err = Translate(context.Background(), e, "hello", "fr")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", got)
}

func TestHTTPEngine_StatusError(t *testing.T) {
	srv := fakeSidecar(t, "secret")

	e, err := NewHTTP(HTTPConfig{BaseURL: srv.URL, APIKey: "wrong"})
	require.NoError(t, err)

	_, err = e.Encode(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestHTTPEngine_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "CUDA out of memory"}`))
	}))
	defer srv.Close()

	e, err := NewHTTP(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.Generate(context.Background(), []int{1}, 128023)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUDA out of memory")
}

func TestHTTPEngine_NoSequences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sequences": []}`))
	}))
	defer srv.Close()

	e, err := NewHTTP(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.Generate(context.Background(), []int{1}, 128023)
	assert.Error(t, err)
}

func TestHTTPEngine_CanceledContext(t *testing.T) {
	srv := fakeSidecar(t, "")

	e, err := NewHTTP(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Encode(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTP_RequiresURL(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	assert.Error(t, err)
}

func TestSetSourceLanguage(t *testing.T) {
	e, err := NewHTTP(HTTPConfig{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	require.NoError(t, e.SetSourceLanguage("de-CH"))
	assert.Equal(t, "de", e.SourceLanguage())
	assert.Error(t, e.SetSourceLanguage("xx"))
	assert.Equal(t, "de", e.SourceLanguage())
}
