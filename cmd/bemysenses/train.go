package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/bemysenses/internal/domain"
)

func trainCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "train LETTER",
		Short: "Build a letter's template from its recorded samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var letter domain.Char
			if err := letter.UnmarshalText([]byte(args[0])); err != nil {
				return err
			}

			e, err := setup(*debug)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.withApp(cmd.Context()); err != nil {
				return e.fail(err)
			}

			tmpl, err := e.app.TrainLetter(letter)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Trained %s from stored samples (%d landmarks)\n", tmpl.Letter, tmpl.Features.Len())
			return nil
		},
	}
}
