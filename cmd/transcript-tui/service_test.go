package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeService(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var deleted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var data interface{}
		switch r.URL.Path {
		case "/api/podcasts/batch-delete":
			var body struct {
				IDs []string `json:"podcast_ids"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			deleted = append(deleted, body.IDs...)
			data = map[string]int{"podcasts_deleted": len(body.IDs)}
		case "/api/settings":
			data = map[string]interface{}{
				"ai_providers":     []string{"deepseek", "claude", "qwen"},
				"default_provider": "claude",
				"whisper_provider": "openai",
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
	}))
	t.Cleanup(server.Close)
	return server, &deleted
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDeleteCommand(t *testing.T) {
	server, deleted := fakeService(t)

	out, err := execute(t, "delete", "3", "8", "--config-dir", t.TempDir(), "--server", server.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "8"}, *deleted)
	assert.Contains(t, out, "Deleted 2 of 2 podcasts")
}

func TestDeleteNeedsIDs(t *testing.T) {
	_, err := execute(t, "delete", "--config-dir", t.TempDir())
	assert.Error(t, err)
}

func TestServerInfoCommand(t *testing.T) {
	server, _ := fakeService(t)

	out, err := execute(t, "server-info", "--config-dir", t.TempDir(), "--server", server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "deepseek, claude, qwen")
	assert.Contains(t, out, "Default provider: claude")
	assert.Contains(t, out, "Transcription:    openai")
	assert.Contains(t, out, `the service default "claude" is not available`)
}
