package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wbrown/asciipng/config"
	"github.com/wbrown/asciipng/server"
)

func NewServeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the upload API",
		Long:  "run the upload API; POST a multipart form with file and width to /api/asciipng",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			flags := cmd.Flags()
			cfg.Addr, _ = flags.GetString("addr")
			cfg.DefaultWidth, _ = flags.GetInt("default-width")
			cfg.MaxWidth, _ = flags.GetInt("max-width")
			cfg.MaxUploadBytes, _ = flags.GetInt64("max-upload-bytes")
			cfg.MaxPixels, _ = flags.GetInt("max-pixels")
			cfg.ShutdownTimeout, _ = flags.GetDuration("shutdown-timeout")
			if err := cfg.Validate(); err != nil {
				return err
			}
			return server.Run(ctx, cfg)
		},
	}
	defaults := config.Default()
	pf := cmd.Flags()
	pf.String("addr", defaults.Addr, "listen address")
	pf.Int("default-width", defaults.DefaultWidth, "width used when a request gives none")
	pf.Int("max-width", defaults.MaxWidth, "largest width a request may ask for")
	pf.Int64("max-upload-bytes", defaults.MaxUploadBytes, "largest accepted request body")
	pf.Int("max-pixels", defaults.MaxPixels, "largest decoded or rendered image, in pixels")
	pf.Duration("shutdown-timeout", defaults.ShutdownTimeout, "grace period for in-flight requests")
	return cmd
}
