package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Voice-SDR/pkg/gateway"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversations over websocket",
	Long: `Starts the conversation gateway. Each websocket connection to
/v1/conversations/ws is one conversation; /healthz and /metrics are served
on the same address.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	srv := gateway.New(a.orchestrator, gateway.Config{
		Addr:           a.cfg.HTTPAddr,
		AllowedOrigins: a.cfg.AllowedOrigins,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Int("open_sessions", a.orchestrator.ActiveSessions()).Msg("shutting down")
		return nil
	})
	return g.Wait()
}
