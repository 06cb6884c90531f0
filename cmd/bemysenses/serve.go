package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/server"
	"github.com/ayusman/bemysenses/internal/tray"
)

func serveCmd(debug *bool) *cobra.Command {
	var withTray bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*debug)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.withApp(cmd.Context()); err != nil {
				return e.fail(err)
			}

			webDir := e.cfg.WebDir
			if webDir == "" {
				webDir = findWebDir(e.cfg.DataDir)
			}
			if webDir != "" {
				e.logger.Info("Serving static files", zap.String("dir", webDir))
			}

			srv := server.New(server.Config{
				StaticDir: webDir,
				Store:     e.store,
				App:       e.app,
				Logger:    e.logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe(e.cfg.Addr)
			}()

			if withTray {
				t, untrack := newTray(e, stop)
				defer untrack()
				go func() {
					<-ctx.Done()
					t.Quit()
				}()
				// Blocks until quit
				t.Run()
				stop()
			}

			select {
			case err := <-errCh:
				if err != nil {
					return e.fail(fmt.Errorf("server failed: %w", err))
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.logger.Warn("Server shutdown", zap.Error(err))
			}
			e.logger.Info("Server stopped")
			return nil
		},
	}

	c.Flags().BoolVar(&withTray, "tray", false, "show a system tray menu")
	return c
}

// newTray wires the tray menu to the app and keeps it in sync with frame
// results until the returned function is called.
func newTray(e *env, quit func()) (*tray.Tray, func()) {
	t := tray.New()

	t.OnToggle(func(start bool) error {
		if start {
			_, err := e.app.StartSession()
			if err != nil {
				e.logger.Error("Failed to start session", zap.Error(err))
			}
			return err
		}
		final, err := e.app.EndSession(context.Background())
		if err != nil {
			e.logger.Error("Failed to end session", zap.Error(err))
			return err
		}
		e.logger.Info("Final sentence", zap.String("sentence", final.Sentence), zap.String("narration", final.Narration))
		return nil
	})

	t.OnSettings(func() {
		url := "http://localhost" + e.cfg.Addr
		if err := openBrowser(url); err != nil {
			e.logger.Warn("Failed to open browser", zap.String("url", url), zap.Error(err))
		}
	})

	t.OnQuit(quit)

	events, untrack := e.app.Subscribe()
	go func() {
		for res := range events {
			t.SetRunning(e.app.Running())
			if res.Predicted != "" {
				t.SetLast(res.Predicted)
			}
			t.SetSentence(res.Sentence)
		}
	}()

	return t, untrack
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
