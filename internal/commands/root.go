// Package commands provides CLI commands for echochat.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	dataDir   string
	ephemeral bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "echochat [message]",
		Short: "Terminal chat widget with a simulated echo bot",
		Long: `echochat is a small terminal chat. Every message you send is saved
locally and answered half a second later by an echo bot.

Examples:
  echochat                      Start the interactive chat
  echochat "hello"              Send one message and print the transcript
  echochat history show         Print the saved chat
  echochat history export -o chat.md
  echochat reset                Start over with an empty chat`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "echochat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if len(args) > 0 {
				return runSend(cmd, opts, args[0])
			}
			return runChat(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory holding the saved chat (default ~/.echochat)")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep the chat in memory only")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newSendCmd(opts))
	rootCmd.AddCommand(newResetCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
