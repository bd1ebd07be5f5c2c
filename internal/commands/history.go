package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/echochat/internal/chat"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the saved chat",
		Long:  `View, export or delete the chat saved in local storage.`,
	}

	historyShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c, ok, err := a.store.Load()
			if err != nil {
				return fmt.Errorf("failed to read stored chat: %w", err)
			}
			if !ok || len(c.Messages) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No messages.")
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), chat.Transcript(c.Messages))
			return err
		},
	}

	historyRawCmd := &cobra.Command{
		Use:   "raw",
		Short: "Print the stored record exactly as saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			raw, ok, err := a.store.Raw()
			if err != nil {
				return fmt.Errorf("failed to read stored chat: %w", err)
			}
			if !ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No stored chat.")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
			return err
		},
	}

	historyClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Clear(); err != nil {
				return fmt.Errorf("failed to clear chat: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Stored chat deleted.")
			return err
		},
	}

	var formatFlag, outputFlag string
	historyExportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved chat as Markdown or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := chat.ParseExportFormat(formatFlag)
			if err != nil {
				return err
			}

			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c, ok, err := a.store.Load()
			if err != nil {
				return fmt.Errorf("failed to read stored chat: %w", err)
			}
			if !ok {
				c = chat.NewChat()
			}
			out, err := chat.Export(c, format)
			if err != nil {
				return err
			}

			if outputFlag == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(outputFlag, []byte(out), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(c.Messages), outputFlag)
			return err
		},
	}
	historyExportCmd.Flags().StringVarP(&formatFlag, "format", "f", "markdown", "Export format (markdown, json)")
	historyExportCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write to file instead of stdout")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRawCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	return historyCmd
}
