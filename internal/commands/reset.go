package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/echochat/internal/schedule"
)

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the saved chat with an empty one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			w, err := a.newWidget(schedule.NewManual())
			if err != nil {
				return err
			}

			w.Reset()
			if err := w.LastError(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Started a new chat.")
			return err
		},
	}
}
