package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crewdeck/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show on-demand documentation (for humans and agents)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `crewdeck docs` to list topics)", topic))
			}

			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	return cmd
}
