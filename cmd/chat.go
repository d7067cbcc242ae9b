package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Voice-SDR/pkg/gateway"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the agent from the terminal",
	Long:  "Runs one conversation over stdin/stdout. Type /bye or send EOF to end it.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close(context.WithoutCancel(cmd.Context()))
		return runChat(cmd.Context(), a.orchestrator, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runChat drives one conversation; the orchestrator satisfies gateway.Conversations.
func runChat(ctx context.Context, conv gateway.Conversations, in io.Reader, out io.Writer) error {
	sessionID := uuid.NewString()
	greeting, err := conv.StartSession(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "agent> %s\n", greeting)

	defer func() {
		snap, err := conv.EndSession(context.WithoutCancel(ctx), sessionID)
		if err == nil {
			fmt.Fprintf(out, "-- session ended (%s, %d lead(s) saved)\n", snap.Phase, snap.Submissions)
		}
	}()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/bye" {
			return nil
		}

		reply, err := conv.HandleMessage(ctx, sessionID, text)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(out, "agent> %s\n", gateway.DefaultFallbackReply)
			continue
		}
		fmt.Fprintf(out, "agent> %s\n", reply)
	}
}
