package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/server"
	"github.com/neboloop/callbridge/internal/svc"
)

// ServeCmd starts the media stream server.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the media stream server",
		Long: `Start the HTTP/WebSocket listener. Telephony media streams connect to
server.stream_path; each call is bridged to a fresh voice agent connection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx, err := svc.NewServiceContext(ctx, ServerConfig)
	if err != nil {
		return err
	}
	defer svcCtx.Close()
	svcCtx.Version = Version

	// Refuse to start rather than refuse every call.
	if _, err := svcCtx.APIKey(); err != nil {
		return err
	}
	if err := svcCtx.Start(ctx); err != nil {
		return err
	}

	logging.Infof("callbridge %s starting", Version)
	return server.Run(ctx, svcCtx, server.ServerOptions{Quiet: quiet})
}
