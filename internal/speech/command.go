package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one synthesis command.
const DefaultTimeout = 30 * time.Second

// CommandSpeaker speaks through a local text-to-speech program such as
// espeak or say. The text is passed as the last argument.
type CommandSpeaker struct {
	command string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCommandSpeaker creates a CommandSpeaker. A zero timeout means DefaultTimeout.
func NewCommandSpeaker(command string, args []string, timeout time.Duration, logger *zap.Logger) *CommandSpeaker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandSpeaker{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

// Speak runs the command and waits for it to exit.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	if err := checkText("speech.command", text); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(append([]string(nil), s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("speech command timeout after %s", s.timeout)
	}
	if err != nil {
		if msg := stderr.String(); msg != "" {
			return fmt.Errorf("speech command failed: %w, stderr: %s", err, msg)
		}
		return fmt.Errorf("speech command failed: %w", err)
	}

	s.logger.Debug("Spoke text", zap.String("command", s.command), zap.Int("chars", len(text)))
	return nil
}
