package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/bemysenses/internal/app"
)

func liveCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Run a prediction session in the terminal until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*debug)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.withApp(cmd.Context()); err != nil {
				return e.fail(err)
			}

			events, cancel := e.app.Subscribe()
			defer cancel()

			if _, err := e.app.StartSession(); err != nil {
				return e.fail(err)
			}
			fmt.Fprintln(os.Stdout, "Signing... press Ctrl+C to finish")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var last app.FrameResult
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case res := <-events:
					if changed(last, res) {
						printFrame(os.Stdout, res)
					}
					last = res
				}
			}

			final, err := e.app.EndSession(context.Background())
			if err != nil {
				return e.fail(err)
			}
			printFinal(os.Stdout, final)
			return nil
		},
	}
}

// changed reports whether a frame result is worth a new terminal line.
func changed(prev, cur app.FrameResult) bool {
	return cur.Emitted || cur.Sentence != prev.Sentence || cur.Narration != prev.Narration
}

func printFrame(w io.Writer, res app.FrameResult) {
	fmt.Fprintf(w, "Predicted: %-2s Sentence: %-30q AI: %s\n", res.Predicted, res.Sentence, res.Narration)
}

func printFinal(w io.Writer, final app.FinalResult) {
	fmt.Fprintf(w, "Final Sentence: %s\n", final.Sentence)
	fmt.Fprintf(w, "Final AI Generated Sentence: %s\n", final.Narration)
}
