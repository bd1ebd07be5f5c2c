package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/echochat/internal/schedule"
	"github.com/diogo/echochat/internal/tui"
	"github.com/diogo/echochat/internal/widget"
)

var errNotTerminal = errors.New("the interactive chat needs a terminal; use 'echochat send' instead")

func newChatCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat",
		Long: `Start the interactive chat.

Enter sends, Ctrl+N starts a new chat, Ctrl+Y copies the last message,
Esc or Ctrl+C quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
}

func runChat(cmd *cobra.Command, opts *globalOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errNotTerminal
	}

	a, err := setup(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	theme, ok := tui.LookupTheme(a.cfg.TUITheme)
	if !ok {
		a.logger.Warn("unknown theme, using default", slog.String("theme", a.cfg.TUITheme))
	}
	tui.ApplyTheme(theme)

	a.logger.Info("starting chat", slog.String("storage", a.location))
	return tui.RunChat(func(post func(func())) (*widget.Widget, error) {
		return a.newWidget(schedule.NewTimer(post))
	}, tui.Options{
		Location:        a.location,
		CopyToClipboard: a.cfg.CopyToClipboard,
	})
}
