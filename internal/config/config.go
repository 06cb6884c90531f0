// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Classifier backends.
const (
	ClassifierTemplate   = "template"
	ClassifierSubprocess = "subprocess"
)

// Speech backends.
const (
	SpeechCommand    = "command"
	SpeechElevenLabs = "elevenlabs"
	SpeechNone       = "none"
)

// Config holds application configuration.
type Config struct {
	Addr    string
	DataDir string
	DBPath  string
	WebDir  string

	CameraID        int
	MotionThreshold float64

	AssetDir    string
	AssetTable  string
	AssetHeight int

	Classifier             string
	ModelPath              string
	MinDetectionConfidence float64

	GeminiAPIKey     string
	GeminiModel      string
	NarrationTimeout time.Duration

	Speech            string
	SpeechCommand     string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
	AudioPlayer       string

	SentryDSN string
	LogLevel  string
}

// Load reads .env (if present) and the environment. Missing values take
// defaults; malformed values are errors.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{get: getenv}

	dataDir := e.str("BMS_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".bemysenses")
	}

	cfg := Config{
		Addr:    e.str("BMS_ADDR", ":8080"),
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "bemysenses.db"),
		WebDir:  e.str("BMS_WEB_DIR", ""),

		CameraID:        e.integer("BMS_CAMERA_ID", 0),
		MotionThreshold: e.number("BMS_MOTION_THRESHOLD", 1.0),

		AssetDir:    e.str("BMS_ASSET_DIR", filepath.Join(dataDir, "assets")),
		AssetTable:  e.str("BMS_ASSET_TABLE", ""),
		AssetHeight: e.integer("BMS_ASSET_HEIGHT", 50),

		Classifier:             strings.ToLower(e.str("BMS_CLASSIFIER", ClassifierTemplate)),
		ModelPath:              e.str("BMS_MODEL_PATH", filepath.Join(dataDir, "model.p")),
		MinDetectionConfidence: e.number("BMS_MIN_DETECTION_CONFIDENCE", 0.3),

		GeminiAPIKey:     e.str("GEMINI_API_KEY", ""),
		GeminiModel:      e.str("GEMINI_MODEL", "gemini-2.0-flash"),
		NarrationTimeout: e.duration("BMS_NARRATION_TIMEOUT", 10*time.Second),

		Speech:            strings.ToLower(e.str("BMS_SPEECH", SpeechCommand)),
		SpeechCommand:     e.str("BMS_SPEECH_COMMAND", "espeak"),
		ElevenLabsKey:     e.str("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: e.str("ELEVENLABS_VOICE_ID", ""),
		AudioPlayer:       e.str("BMS_AUDIO_PLAYER", "ffplay"),

		SentryDSN: e.str("SENTRY_DSN", ""),
		LogLevel:  e.str("BMS_LOG_LEVEL", "info"),
	}

	if e.err != nil {
		return Config{}, e.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Classifier {
	case ClassifierTemplate, ClassifierSubprocess:
	default:
		return fmt.Errorf("BMS_CLASSIFIER must be %q or %q, got %q", ClassifierTemplate, ClassifierSubprocess, c.Classifier)
	}
	switch c.Speech {
	case SpeechCommand, SpeechElevenLabs, SpeechNone:
	default:
		return fmt.Errorf("BMS_SPEECH must be %q, %q or %q, got %q", SpeechCommand, SpeechElevenLabs, SpeechNone, c.Speech)
	}
	if c.AssetHeight <= 0 {
		return fmt.Errorf("BMS_ASSET_HEIGHT must be positive, got %d", c.AssetHeight)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("BMS_MIN_DETECTION_CONFIDENCE must be in [0,1], got %g", c.MinDetectionConfidence)
	}
	if c.MotionThreshold <= 0 {
		return fmt.Errorf("BMS_MOTION_THRESHOLD must be positive, got %g", c.MotionThreshold)
	}
	return nil
}

// env reads typed values and keeps the first parse error.
type env struct {
	get func(string) string
	err error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *env) number(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}

func (e *env) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
