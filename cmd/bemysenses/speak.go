package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func speakCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "speak TEXT",
		Short: "Speak English text aloud",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*debug)
			if err != nil {
				return err
			}
			defer e.close()

			e.openSpeaker()
			if err := e.speaker.Speak(cmd.Context(), strings.Join(args, " ")); err != nil {
				return e.fail(err)
			}
			return nil
		},
	}
}
