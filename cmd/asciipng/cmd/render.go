package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrown/asciipng"
	"github.com/wbrown/asciipng/logging"
	"github.com/wbrown/asciipng/oops"
)

const formatPNG = "png"

// NewRenderCmd converts a PNG file, or stdin when the path is "-".
func NewRenderCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "render a PNG as character art",
		Long:  "render a PNG as character art; FILE may be - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			width, _ := flags.GetInt("width")
			format, _ := flags.GetString("format")
			outPath, _ := flags.GetString("out")
			scale, _ := flags.GetInt("scale")
			fontPath, _ := flags.GetString("font")
			rampGlyphs, _ := flags.GetString("ramp")

			if width < 1 {
				return oops.New(asciipng.ErrInvalidGeometry, "--width must be at least 1, got %d", width)
			}
			if format == formatPNG && outPath == "" {
				return oops.New(nil, "--format png needs --out")
			}
			ramp, err := asciipng.NewRamp(rampGlyphs)
			if err != nil {
				return err
			}

			buf, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			conv := asciipng.NewConverter(
				asciipng.WithRamp(ramp),
				asciipng.WithLogger(*logging.GlobalLogger()),
			)
			art, err := conv.DecodeAndRender(buf, width)
			if err != nil {
				logging.Error().Err(err).Str("file", args[0]).Msg("render failed")
				return err
			}

			if format == formatPNG {
				var ttf []byte
				if fontPath != "" {
					if ttf, err = os.ReadFile(fontPath); err != nil {
						return oops.New(err, "failed to read font")
					}
				}
				fr, err := asciipng.NewFontRenderer(ttf, ramp, scale)
				if err != nil {
					return err
				}
				if err := fr.SavePNG(art, outPath); err != nil {
					return err
				}
				logging.Info().Str("out", outPath).Int("width", art.Width).Int("height", art.Height).Msg("wrote image")
				return nil
			}

			text, err := art.Format(asciipng.Format(format))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, text)
		},
	}
	var formats []string
	for _, f := range asciipng.Formats {
		formats = append(formats, string(f))
	}
	formats = append(formats, formatPNG)

	pf := cmd.Flags()
	pf.IntP("width", "w", 80, "output width in characters")
	pf.StringP("format", "f", string(asciipng.FormatANSI), fmt.Sprintf("output format (%s)", strings.Join(formats, "|")))
	pf.StringP("out", "o", "", "output path (stdout when empty)")
	pf.Int("scale", 2, "pixel scale for png output (1 = 8x8 glyphs)")
	pf.String("font", "", "TTF file for png output (embedded Go Mono when empty)")
	pf.String("ramp", string(asciipng.DefaultRamp), "glyphs from darkest to brightest")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		buf, err := io.ReadAll(stdin)
		if err != nil {
			return nil, oops.New(err, "failed to read stdin")
		}
		return buf, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.New(err, "failed to read input")
	}
	return buf, nil
}

func writeOutput(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return oops.New(err, "failed to write output")
	}
	return nil
}
