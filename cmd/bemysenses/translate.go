package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/bemysenses/internal/domain"
	"github.com/ayusman/bemysenses/internal/translate"
)

func translateCmd(debug *bool) *cobra.Command {
	var output string

	c := &cobra.Command{
		Use:   "translate TEXT",
		Short: "Render text as a strip of sign images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*debug)
			if err != nil {
				return err
			}
			defer e.close()

			tr, err := e.newTranslator()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			res := tr.Translate(text)

			var data []byte
			if output != "" {
				if data, res, err = tr.RenderPNG(text); err != nil {
					return err
				}
			}

			printTranslation(os.Stdout, res)

			if output == "" {
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(os.Stdout, "Wrote %s\n", output)
			return nil
		},
	}

	c.Flags().StringVarP(&output, "output", "o", "", "write the composed PNG to this file")
	return c
}

// printTranslation lists the sign files and every character left out,
// including mapped characters whose image file is missing.
func printTranslation(w io.Writer, res translate.Result) {
	files := make([]string, len(res.Assets))
	for i, a := range res.Assets {
		files[i] = a.File
	}
	fmt.Fprintf(w, "Signs: %s\n", strings.Join(files, " "))
	if skipped := res.Unrendered(); len(skipped) > 0 {
		fmt.Fprintf(w, "No sign for: %s\n", domain.Join(skipped))
	}
}
