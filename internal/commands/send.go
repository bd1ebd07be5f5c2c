package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/echochat/internal/chat"
	"github.com/diogo/echochat/internal/schedule"
)

// replyGrace is added to the reply delay before send gives up waiting.
const replyGrace = 5 * time.Second

func newSendCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the transcript",
		Long: `Send a message without opening the interactive chat. The command waits
for the echo reply, then prints the whole conversation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, args[0])
		},
	}
}

func runSend(cmd *cobra.Command, opts *globalOptions, text string) error {
	a, err := setup(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	loop := schedule.NewLoop(16)
	timer := schedule.NewTimer(loop.Post)
	w, err := a.newWidget(timer)
	if err != nil {
		return err
	}

	w.Input(text)
	if !w.SendEnabled() {
		return errors.New("message is empty")
	}
	w.Submit()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.ReplyDelay()+replyGrace)
	defer cancel()
	go func() {
		timer.Wait()
		cancel()
	}()

	if err := loop.Run(ctx); errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out waiting for the echo reply")
	}
	if err := w.LastError(); err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), chat.Transcript(w.Messages()))
	return err
}
