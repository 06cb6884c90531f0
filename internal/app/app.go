// Package app wires the gesture-to-text pipeline: camera, hand detector,
// classifier, sentence accumulator and narrator, run as prediction sessions.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/capture"
	"github.com/ayusman/bemysenses/internal/classifier"
	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/feature"
	"github.com/ayusman/bemysenses/internal/narrator"
	"github.com/ayusman/bemysenses/internal/sentence"
	"github.com/ayusman/bemysenses/internal/store"
	"github.com/ayusman/bemysenses/internal/translate"
)

// DefaultStopTimeout bounds how long EndSession waits for the frame loop to
// finish its current frame.
const DefaultStopTimeout = 2 * time.Second

var (
	// ErrSessionRunning is returned by StartSession while a session is active.
	ErrSessionRunning = errors.New("session already running")
	// ErrNoSession is returned by EndSession when no session was ever started.
	ErrNoSession = errors.New("no session")
)

// Config holds the collaborators of the application. Camera and Detector
// are required; everything else is optional.
type Config struct {
	Store      *store.Store
	Camera     capture.Camera
	Detector   detector.Detector
	Model      classifier.Model
	Templates  *classifier.TemplateModel
	Narrator   *narrator.Narrator
	Translator *translate.Translator

	MotionThreshold float64
	Pacer           capture.PacerConfig
	// AlwaysActive sends every frame to the detector, skipping motion gating.
	AlwaysActive bool
	// StopTimeout defaults to DefaultStopTimeout.
	StopTimeout time.Duration

	Logger *zap.Logger
}

// App is the main application that runs prediction sessions.
type App struct {
	config     Config
	logger     *zap.Logger
	camera     capture.Camera
	motion     *capture.MotionDetector
	pacer      *capture.Pacer
	detector   detector.Detector
	classifier *classifier.Classifier
	templates  *classifier.TemplateModel
	sentence   *sentence.Accumulator
	narrator   *narrator.Narrator
	translator *translate.Translator
	trainer    *classifier.Trainer

	// ownNarrator is set when the App created and started the narrator itself.
	ownNarrator bool

	// lifecycle serializes StartSession and EndSession; mu guards the
	// session fields and is never held across a blocking call.
	lifecycle sync.Mutex
	mu        sync.Mutex
	session   *session
	lastFinal *FinalResult

	events *broadcaster

	frameMu sync.Mutex
	frame   gocv.Mat
	last    FrameResult
}

// New creates an App. When no Model is given the template model is used,
// and when no Narrator is given narration is disabled.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, fmt.Errorf("app: camera is required")
	}
	if config.Detector == nil {
		return nil, fmt.Errorf("app: detector is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	templates := config.Templates
	if templates == nil {
		templates = classifier.NewTemplateModel()
	}
	model := config.Model
	if model == nil {
		model = templates
	}

	nar := config.Narrator
	ownNarrator := false
	if nar == nil {
		nar = narrator.New(narrator.Config{}, nil, nil, logger)
		nar.Start(context.Background())
		ownNarrator = true
	}

	if config.StopTimeout <= 0 {
		config.StopTimeout = DefaultStopTimeout
	}

	tr := config.Translator
	if tr == nil {
		tr = translate.New(translate.Config{}, logger)
	}

	return &App{
		config:      config,
		logger:      logger,
		camera:      config.Camera,
		motion:      capture.NewMotionDetector(config.MotionThreshold),
		pacer:       capture.NewPacer(config.Pacer),
		detector:    config.Detector,
		classifier:  classifier.New(model),
		templates:   templates,
		sentence:    sentence.NewAccumulator(),
		narrator:    nar,
		ownNarrator: ownNarrator,
		translator:  tr,
		trainer:     classifier.NewTrainer(),
		events:      newBroadcaster(),
		frame:       gocv.NewMat(),
	}, nil
}

// Close ends any running session and releases the detector and frame buffers.
func (a *App) Close(ctx context.Context) error {
	if _, err := a.EndSession(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		a.logger.Warn("Error ending session on close", zap.Error(err))
	}

	a.motion.Close()
	if a.ownNarrator {
		a.narrator.Stop()
	}

	a.frameMu.Lock()
	a.frame.Close()
	a.frame = gocv.NewMat()
	a.frameMu.Unlock()

	return a.detector.Close()
}

// Narrator returns the narrator.
func (a *App) Narrator() *narrator.Narrator {
	return a.narrator
}

// Translator returns the sign translator.
func (a *App) Translator() *translate.Translator {
	return a.translator
}

// Templates returns the template model.
func (a *App) Templates() *classifier.TemplateModel {
	return a.templates
}

// LoadTemplates loads trained letter templates from the store into the
// template model. Letters without features are skipped.
func (a *App) LoadTemplates() error {
	if a.config.Store == nil {
		return nil
	}

	letters, err := a.config.Store.Letters().List()
	if err != nil {
		return err
	}

	loaded := 0
	for _, l := range letters {
		features, err := a.config.Store.Letters().GetFeatures(l.Letter)
		if err != nil {
			a.logger.Warn("Failed to load features", zap.String("letter", l.Letter), zap.Error(err))
			continue
		}
		if len(features) == 0 {
			continue
		}

		c, ok := domain.ParseChar([]rune(l.Letter)[0])
		if !ok || c == domain.Space {
			continue
		}
		a.templates.SetTemplate(&classifier.Template{
			Letter:    c,
			Features:  feature.Vector(features),
			Tolerance: l.Tolerance,
		})
		loaded++
	}

	a.logger.Info("Loaded letter templates", zap.Int("count", loaded), zap.Int("letters", len(letters)))
	return nil
}

// TrainLetter averages the stored samples of a letter into its template,
// saves the features and installs the template in the live model.
func (a *App) TrainLetter(letter domain.Char) (*classifier.Template, error) {
	if a.config.Store == nil {
		return nil, fmt.Errorf("app: no store configured")
	}
	if domain.IndexOf(letter) < 0 {
		return nil, domain.NewError("app.train", domain.KindInvalidInput, fmt.Errorf("%q is not a letter", letter))
	}

	key := letter.String()
	meta, err := a.config.Store.Letters().Get(key)
	if err != nil {
		return nil, err
	}

	samples, err := a.config.Store.Samples().GetByLetter(key)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, domain.NewError("app.train", domain.KindInvalidInput, fmt.Errorf("letter %s has no samples", key))
	}

	raw := make([]json.RawMessage, len(samples))
	for i, s := range samples {
		raw[i] = s.Data
	}

	features, err := a.trainer.Train(raw)
	if err != nil {
		return nil, domain.NewError("app.train", domain.KindInvalidInput, err)
	}

	if err := a.config.Store.Letters().SetFeatures(key, features); err != nil {
		return nil, err
	}

	tmpl := &classifier.Template{Letter: letter, Features: features, Tolerance: meta.Tolerance}
	a.templates.SetTemplate(tmpl)

	a.logger.Info("Trained letter", zap.String("letter", key), zap.Int("samples", len(samples)))
	return tmpl, nil
}

// ForgetLetter removes a letter's template from the live model.
func (a *App) ForgetLetter(letter domain.Char) {
	a.templates.RemoveTemplate(letter)
}
