package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultElevenLabsURL is the public API endpoint.
	DefaultElevenLabsURL = "https://api.elevenlabs.io"
	// DefaultElevenLabsModel is the synthesis model requested.
	DefaultElevenLabsModel = "eleven_flash_v2_5"
)

// ElevenLabsConfig configures the ElevenLabs speaker.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	Model   string
	BaseURL string
	// Player reads encoded audio on stdin, e.g. "ffplay -nodisp -autoexit -".
	Player     string
	PlayerArgs []string
	Timeout    time.Duration
}

// ElevenLabsSpeaker synthesizes speech over HTTP and pipes the audio into a player.
type ElevenLabsSpeaker struct {
	config ElevenLabsConfig
	client *http.Client
	logger *zap.Logger
}

// NewElevenLabsSpeaker validates the config and fills defaults.
func NewElevenLabsSpeaker(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsSpeaker, error) {
	if config.APIKey == "" || config.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs: api key or voice id missing")
	}
	if config.Player == "" {
		return nil, fmt.Errorf("elevenlabs: no audio player configured")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultElevenLabsURL
	}
	if config.Model == "" {
		config.Model = DefaultElevenLabsModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ElevenLabsSpeaker{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

// Speak fetches audio for text and plays it.
func (s *ElevenLabsSpeaker) Speak(ctx context.Context, text string) error {
	if err := checkText("speech.elevenlabs", text); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	audio, err := s.Synthesize(ctx, text)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, s.config.Player, s.config.PlayerArgs...)
	cmd.Stdin = bytes.NewReader(audio)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := stderr.String(); msg != "" {
			return fmt.Errorf("audio player failed: %w, stderr: %s", err, msg)
		}
		return fmt.Errorf("audio player failed: %w", err)
	}
	return nil
}

// Synthesize returns the encoded audio for text.
func (s *ElevenLabsSpeaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	u, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: bad base url: %w", err)
	}
	u = u.JoinPath("v1", "text-to-speech", s.config.VoiceID)

	body, err := json.Marshal(map[string]any{
		"model_id": s.config.Model,
		"text":     text,
		"voice_settings": map[string]any{
			"stability":        0.4,
			"similarity_boost": 0.7,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("elevenlabs http status=%d body=%s", resp.StatusCode, string(b))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs http read error: %w", err)
	}

	s.logger.Debug("Received speech audio", zap.Int("bytes", len(audio)))
	return audio, nil
}
