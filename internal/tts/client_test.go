package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoicesListsUpstreamCatalogue(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voices", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"voices": []Voice{{ID: "v1", Name: "Test Voice", Gender: "female", Language: "en"}},
		})
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, "key-123")
	voices, err := c.Voices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 1)
	assert.Equal(t, "v1", voices[0].ID)
}

func TestVoicesEmptyCatalogueFallsBack(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"voices": []Voice{}})
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, "")
	voices, err := c.Voices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultVoices(), voices)
}

func TestVoicesUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, "")
	_, err := c.Voices(context.Background())
	require.Error(t, err)
}

func TestSynthesizeMapsVoiceAndDefaults(t *testing.T) {
	var got map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tts_to_audio", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"audio_url": "https://audio.test/out.wav"})
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, "")
	result, err := c.Synthesize(context.Background(), SynthesisRequest{
		Text:    "hello there",
		VoiceID: "male-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", got["text"])
	assert.Equal(t, "male", got["speaker_wav"])
	assert.Equal(t, "en", got["language"])
	assert.Equal(t, 1.0, got["speed"])
	assert.Equal(t, "https://audio.test/out.wav", result.AudioURL)
	assert.NotEmpty(t, result.Message)
}

func TestSynthesizeNonJSONBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0x00, 0x01, 0x02}) // raw audio bytes
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, "")
	result, err := c.Synthesize(context.Background(), SynthesisRequest{Text: "hi", VoiceID: "female-1"})
	require.NoError(t, err)
	assert.Empty(t, result.AudioURL)
	assert.NotEmpty(t, result.Message)
}

func TestSynthesizeUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, "")
	_, err := c.Synthesize(context.Background(), SynthesisRequest{Text: "hi", VoiceID: "female-1"})
	require.Error(t, err)
}
