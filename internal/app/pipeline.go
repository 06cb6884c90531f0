package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/bemysenses/internal/detector"
	"github.com/ayusman/bemysenses/internal/feature"
)

// runPipeline is the frame loop of one session. It is the only goroutine
// that feeds the sentence accumulator, so predictions are applied in frame order.
//
// Each tick:
//  1. Read a frame; on failure log and wait for the next tick
//  2. Motion detection switches between idle and active frame rates
//  3. In active mode, detect hands and run ProcessHands
//
// Idle frames are "no prediction" frames and leave the sentence untouched.
func (a *App) runPipeline(ctx context.Context, s *session) {
	defer close(s.done)

	ticker := time.NewTicker(a.pacer.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.logger.Debug("Error reading frame", zap.Error(err))
			continue
		}

		a.keepFrame(frame)

		active := a.config.AlwaysActive
		if !active {
			motion, _ := a.motion.Detect(frame)
			var changed bool
			active, changed = a.pacer.Observe(motion, time.Now())
			if changed {
				a.camera.SetFPS(a.pacer.FPS())
				ticker.Reset(a.pacer.Interval())
				a.logger.Debug("Frame rate changed", zap.Bool("active", active), zap.Int("fps", a.pacer.FPS()))
			}
		}

		if !active {
			frame.Close()
			continue
		}

		hands, err := a.detector.Detect(ctx, frame)
		frame.Close()

		// A cancelled session must not apply a late prediction
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			a.logger.Debug("Error detecting hands", zap.Error(err))
			a.finish(s, FrameResult{Active: true, Error: err.Error()})
			continue
		}

		a.processHands(ctx, s, hands)
	}
}

// ProcessHands runs one frame's detected hands through the pipeline and
// publishes the result. It is safe to call only while no session frame
// loop is running, and is meant for tests and offline replay.
func (a *App) ProcessHands(ctx context.Context, hands []detector.LandmarkSet) FrameResult {
	a.mu.Lock()
	s := a.session
	a.mu.Unlock()
	if s == nil {
		s = &session{}
	}
	return a.processHands(ctx, s, hands)
}

func (a *App) processHands(ctx context.Context, s *session, hands []detector.LandmarkSet) FrameResult {
	res := FrameResult{Active: true, Hands: len(hands)}

	// Multiple hands: the last one wins
	hand, ok := detector.Last(hands)
	if !ok {
		return a.finish(s, res)
	}

	vec, err := feature.Normalize(hand)
	if err != nil {
		a.logger.Debug("Skipping frame", zap.Error(err))
		res.Error = err.Error()
		return a.finish(s, res)
	}

	letter, err := a.classifier.Classify(ctx, vec)
	if ctx.Err() != nil {
		return res
	}
	if err != nil {
		a.logger.Debug("Skipping frame", zap.Error(err))
		res.Error = err.Error()
		return a.finish(s, res)
	}

	res.Predicted = letter.String()
	res.Emitted = a.sentence.Apply(letter)
	if res.Emitted {
		a.logger.Debug("Letter accepted", zap.String("letter", res.Predicted))
		a.narrator.Post(a.sentence.Text())
	}

	return a.finish(s, res)
}

// finish stamps a result with session state and publishes it.
func (a *App) finish(s *session, res FrameResult) FrameResult {
	a.frameMu.Lock()
	s.seq++
	res.Seq = s.seq
	res.At = time.Now()
	res.SessionID = s.id
	res.Sentence = a.sentence.Text()
	res.Narration = narrationDisplay(a.narrator)
	a.last = res
	a.frameMu.Unlock()

	a.events.publish(res)
	return res
}

// keepFrame stores a copy of the latest camera frame for the preview stream.
func (a *App) keepFrame(frame *gocv.Mat) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	frame.CopyTo(&a.frame)
}

// LatestJPEG encodes the most recent camera frame. ok is false before the
// first frame of a session has been read.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame.Empty() {
		return nil, false
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, a.frame)
	if err != nil {
		return nil, false
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, true
}
