package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/app"
	"github.com/ayusman/bemysenses/internal/capture"
	"github.com/ayusman/bemysenses/internal/classifier"
	"github.com/ayusman/bemysenses/internal/config"
	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/logger"
	"github.com/ayusman/bemysenses/internal/narrator"
	"github.com/ayusman/bemysenses/internal/speech"
	"github.com/ayusman/bemysenses/internal/store"
	"github.com/ayusman/bemysenses/internal/translate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "bemysenses",
		Short:        "BeMySenses - sign language to text and text to sign",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "human-readable debug logging")

	cmd.AddCommand(
		serveCmd(&debug),
		liveCmd(&debug),
		translateCmd(&debug),
		speakCmd(&debug),
		trainCmd(&debug),
	)
	return cmd
}

// env is everything a command needs, built from configuration.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *store.Store
	narrator *narrator.Narrator
	speaker  speech.Speaker
	app      *app.App

	closers []func()
}

// setup loads configuration, logging and error reporting. Commands that
// need the pipeline call withApp afterwards.
func setup(debug bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Development: debug})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: log}
	e.closers = append(e.closers, func() { _ = log.Sync() })

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      getEnvironment(),
		})
		if err != nil {
			log.Warn("Sentry init failed", zap.Error(err))
		} else {
			log.Info("Sentry initialized")
			e.closers = append(e.closers, func() { sentry.Flush(2 * time.Second) })
		}
	}

	return e, nil
}

// close runs the cleanup functions in reverse order.
func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// fail reports a startup error to Sentry before returning it.
func (e *env) fail(err error) error {
	if e.cfg.SentryDSN != "" {
		sentry.CaptureException(err)
	}
	e.logger.Error("Command failed", zap.Error(err))
	return err
}

func (e *env) openStore() error {
	if err := os.MkdirAll(filepath.Dir(e.cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(e.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, func() { st.Close() })
	return nil
}

// openSpeaker picks the speech backend. A misconfigured backend falls back
// to no speech rather than failing the command.
func (e *env) openSpeaker() {
	switch e.cfg.Speech {
	case config.SpeechElevenLabs:
		fields := strings.Fields(e.cfg.AudioPlayer)
		var player string
		var args []string
		if len(fields) > 0 {
			player, args = fields[0], fields[1:]
		}
		s, err := speech.NewElevenLabsSpeaker(speech.ElevenLabsConfig{
			APIKey:     e.cfg.ElevenLabsKey,
			VoiceID:    e.cfg.ElevenLabsVoiceID,
			Player:     player,
			PlayerArgs: args,
		}, e.logger)
		if err != nil {
			e.logger.Warn("Speech disabled", zap.Error(err))
			e.speaker = speech.Nop{}
			return
		}
		e.speaker = s
	case config.SpeechCommand:
		fields := strings.Fields(e.cfg.SpeechCommand)
		if len(fields) == 0 {
			e.speaker = speech.Nop{}
			return
		}
		e.speaker = speech.NewCommandSpeaker(fields[0], fields[1:], 0, e.logger)
	default:
		e.speaker = speech.Nop{}
	}
}

// openNarrator starts the narrator. Without an API key narration is
// disabled and the session works without it.
func (e *env) openNarrator(ctx context.Context) {
	e.openSpeaker()

	var completer narrator.Completer
	if e.cfg.GeminiAPIKey != "" {
		gc, err := narrator.NewGeminiCompleter(ctx, narrator.GeminiConfig{
			APIKey: e.cfg.GeminiAPIKey,
			Model:  e.cfg.GeminiModel,
		}, e.logger)
		if err != nil {
			e.logger.Warn("Narration disabled", zap.Error(err))
		} else {
			completer = gc
		}
	} else {
		e.logger.Info("GEMINI_API_KEY not set, narration disabled")
	}

	n := narrator.New(narrator.Config{Timeout: e.cfg.NarrationTimeout}, completer, e.speaker, e.logger)
	n.Start(context.Background())
	e.narrator = n
	e.closers = append(e.closers, n.Stop)
}

func (e *env) newTranslator() (*translate.Translator, error) {
	var table translate.Table
	if e.cfg.AssetTable != "" {
		t, err := translate.LoadTable(e.cfg.AssetTable)
		if err != nil {
			return nil, err
		}
		table = t
	}
	return translate.New(translate.Config{
		AssetDir: e.cfg.AssetDir,
		Table:    table,
		Height:   e.cfg.AssetHeight,
	}, e.logger), nil
}

// withApp builds the full pipeline: store, camera, detector, classifier,
// narrator and translator.
func (e *env) withApp(ctx context.Context) error {
	if err := e.openStore(); err != nil {
		return err
	}
	e.openNarrator(ctx)

	tr, err := e.newTranslator()
	if err != nil {
		return err
	}

	detCfg := detector.DefaultConfig()
	detCfg.MinConfidence = e.cfg.MinDetectionConfidence
	detCfg.DataDir = e.cfg.DataDir
	var det detector.Detector
	mp, err := detector.NewMediaPipeDetector(detCfg, e.logger)
	if err != nil {
		e.logger.Warn("Hand detection unavailable", zap.Error(err))
		det = detector.Unavailable(err)
	} else {
		det = mp
	}

	var model classifier.Model
	if e.cfg.Classifier == config.ClassifierSubprocess {
		sm, err := classifier.NewSubprocessModel(e.cfg.ModelPath, e.cfg.DataDir, e.logger)
		if err != nil {
			det.Close()
			return fmt.Errorf("failed to load classifier: %w", err)
		}
		e.closers = append(e.closers, func() { sm.Close() })
		model = sm
	}

	a, err := app.New(app.Config{
		Store:           e.store,
		Camera:          capture.NewCamera(e.cfg.CameraID),
		Detector:        det,
		Model:           model,
		Narrator:        e.narrator,
		Translator:      tr,
		MotionThreshold: e.cfg.MotionThreshold,
		Logger:          e.logger,
	})
	if err != nil {
		det.Close()
		return err
	}
	if err := a.LoadTemplates(); err != nil {
		e.logger.Warn("Failed to load letter templates", zap.Error(err))
	}

	e.app = a
	e.closers = append(e.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.NarrationTimeout+time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			e.logger.Warn("Error closing app", zap.Error(err))
		}
	})
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data dir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}

func getEnvironment() string {
	if v := os.Getenv("BMS_ENV"); v != "" {
		return v
	}
	return "development"
}
