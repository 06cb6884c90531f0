// Package pyproc runs the Python sidecars that host the external models
// (MediaPipe hand landmarks, the pretrained sign classifier).
//
// Wire protocol: each request is a 4-byte big-endian length followed by the
// payload on the sidecar's stdin; each response is a single JSON line on stdout.
// The sidecar is started lazily on the first call and stopped after it has been
// idle for IdleTimeout. A call whose context ends before the reply arrives
// kills the sidecar; the next call starts a fresh one.
package pyproc

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long an unused sidecar stays alive.
const DefaultIdleTimeout = 30 * time.Second

// Config describes one sidecar.
type Config struct {
	// Script is the file name looked up under scripts/ (e.g. "mediapipe_service.py").
	Script string
	// Args are passed to the script after its path.
	Args []string
	// DataDir is an extra search root for scripts/ and venv/.
	DataDir string
	// Interpreter overrides the Python interpreter lookup.
	Interpreter string
	// IdleTimeout defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration
	Logger      *zap.Logger
}

// Process is a lazily started sidecar. Calls are serialized.
type Process struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	lastUsed   time.Time
	idleTimer  *time.Timer
	logger     *zap.Logger
}

// New locates the sidecar script. The process itself starts on the first Call.
func New(config Config) (*Process, error) {
	scriptPath := FindScript(config.Script, config.DataDir)
	if scriptPath == "" {
		return nil, fmt.Errorf("%s not found", config.Script)
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Process{
		config:     config,
		scriptPath: scriptPath,
		logger:     logger.With(zap.String("sidecar", config.Script)),
	}, nil
}

// Call sends one framed payload and returns the response line.
func (p *Process) Call(ctx context.Context, payload []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	type reply struct {
		line []byte
		err  error
	}
	done := make(chan reply, 1)
	stdin, stdout := p.stdin, p.stdout
	go func() {
		line, err := exchange(stdin, stdout, payload)
		done <- reply{line, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			p.abort()
			return nil, r.err
		}
		p.lastUsed = time.Now()
		p.resetIdleTimer()
		return r.line, nil
	case <-ctx.Done():
		// Killing the sidecar closes its pipes and unblocks the exchange
		p.kill()
		<-done
		return nil, ctx.Err()
	}
}

func exchange(stdin io.Writer, stdout *bufio.Reader, payload []byte) ([]byte, error) {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(payload)))

	if _, err := stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := stdin.Write(payload); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// Close shuts down the sidecar if it is running.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

// Running reports whether the sidecar process is currently alive.
func (p *Process) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

func (p *Process) ensureStarted() error {
	if p.started {
		return nil
	}

	interpreter := p.config.Interpreter
	if interpreter == "" {
		interpreter = FindVenvPython(p.config.DataDir)
	}
	if interpreter == "" {
		interpreter = "python3"
	}

	args := append([]string{p.scriptPath}, p.config.Args...)
	p.cmd = exec.Command(interpreter, args...)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Sidecar diagnostics go straight to our stderr
	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.config.Script, err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true
	p.lastUsed = time.Now()

	p.logger.Info("sidecar started", zap.String("interpreter", interpreter), zap.String("script", p.scriptPath))
	return nil
}

// abort tears down a sidecar whose pipe broke so the next call restarts it.
func (p *Process) abort() {
	if err := p.shutdown(); err != nil {
		p.logger.Warn("sidecar exited with error", zap.Error(err))
	}
}

// kill stops a sidecar that is stuck in a call.
func (p *Process) kill() {
	if !p.started {
		return
	}
	p.logger.Warn("sidecar did not answer in time, killing it")
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.shutdown()
}

func (p *Process) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	p.logger.Info("sidecar stopped")
	return err
}

func (p *Process) resetIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.config.IdleTimeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if time.Since(p.lastUsed) < p.config.IdleTimeout {
			return
		}
		p.shutdown()
	})
}

// FindScript searches the usual locations for scripts/<name>.
func FindScript(name, dataDir string) string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
	}
	if dataDir != "" {
		candidates = append(candidates, filepath.Join(dataDir, "scripts", name))
	}

	return firstExisting(candidates)
}

// FindVenvPython looks for a Python interpreter in a virtual environment.
func FindVenvPython(dataDir string) string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
	}
	if dataDir != "" {
		candidates = append(candidates, filepath.Join(dataDir, "venv/bin/python"))
	}

	return firstExisting(candidates)
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
