package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wbrown/asciipng/config"
	"github.com/wbrown/asciipng/logging"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	var logFile io.Closer
	cmd := &cobra.Command{
		Use:           "asciipng",
		Short:         "render PNG images as colored character art",
		Long:          "asciipng decodes truecolor PNG images and renders them as glyphs shaded by luminance, as HTML, ANSI, plain text or PNG.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			pf := cmd.Flags()
			lc := config.LogConfig{}
			lc.Level, _ = pf.GetString("log-level")
			lc.File, _ = pf.GetString("log-file")
			lc.JSON, _ = pf.GetBool("log-json")

			level, err := lc.ZerologLevel()
			if err != nil {
				return err
			}
			logFile = logging.Setup(logging.Options{
				Level: level,
				File:  lc.File,
				JSON:  lc.JSON,
				Out:   cmd.ErrOrStderr(),
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewRenderCmd(ctx),
		NewServeCmd(ctx),
	)
	defaults := config.Default()
	pf := cmd.PersistentFlags()
	pf.String("log-level", defaults.Log.Level, "log level (trace, debug, info, warn, error)")
	pf.String("log-file", "", "also write JSON logs to this file, rotated by size")
	pf.Bool("log-json", false, "log JSON instead of console output")
	return cmd
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}
