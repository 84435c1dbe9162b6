package cmd

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/asciipng"
	"github.com/wbrown/asciipng/imageutil"
)

func writeTestPNG(t *testing.T, img *imageutil.RasterImage) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRoot(context.Background(), "abc123")
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(bytes.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", out)
}

func TestRenderText(t *testing.T) {
	path := writeTestPNG(t, imageutil.CreateSolidImage(4, 2, imageutil.Pixel{R: 255, G: 255, B: 255, A: 255}))

	out, err := execute(t, nil, "render", "--format", "text", "--width", "4", path)
	require.NoError(t, err)
	assert.Equal(t, "@@@@\n@@@@\n", out)
}

func TestRenderStdinHTML(t *testing.T) {
	path := writeTestPNG(t, imageutil.CreateSolidImage(1, 1, imageutil.Pixel{A: 255}))
	buf, err := os.ReadFile(path)
	require.NoError(t, err)

	out, err := execute(t, buf, "render", "-f", "html", "-w", "1", "-")
	require.NoError(t, err)
	assert.Equal(t, `<pre><span style="color: rgb(0,0,0);">.</span>`+"\n</pre>", out)
}

func TestRenderANSIToFile(t *testing.T) {
	path := writeTestPNG(t, imageutil.CreateSolidImage(2, 2, imageutil.Pixel{R: 255, A: 255}))
	outPath := filepath.Join(t.TempDir(), "out.ans")

	out, err := execute(t, nil, "render", "-w", "2", "-o", outPath, path)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(written), asciipng.ESC+"[38;2;255;0;0m"))
}

func TestRenderPNG(t *testing.T) {
	path := writeTestPNG(t, imageutil.CreateGradientImage(8, 4))
	outPath := filepath.Join(t.TempDir(), "out.png")

	_, err := execute(t, nil, "render", "-f", "png", "--scale", "1", "-w", "8", "-o", outPath, path)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8*asciipng.GlyphWidth, img.Bounds().Dx())
	assert.Equal(t, 4*asciipng.GlyphHeight, img.Bounds().Dy())
}

func TestRenderErrors(t *testing.T) {
	path := writeTestPNG(t, imageutil.CreateSolidImage(2, 2, imageutil.Pixel{A: 255}))

	_, err := execute(t, nil, "render", "-f", "png", path)
	assert.Error(t, err)

	_, err = execute(t, nil, "render", "-f", "sixel", path)
	assert.Error(t, err)

	_, err = execute(t, nil, "render", "--ramp", "", path)
	assert.ErrorIs(t, err, asciipng.ErrInvalidRamp)

	for _, width := range []string{"0", "-3", strconv.Itoa(asciipng.DefaultMaxPixels + 1)} {
		_, err = execute(t, nil, "render", "--width="+width, path)
		assert.ErrorIs(t, err, asciipng.ErrInvalidGeometry, "width %s", width)
	}

	_, err = execute(t, []byte("nope"), "render", "-")
	assert.ErrorIs(t, err, asciipng.ErrInvalidSignature)

	_, err = execute(t, nil, "render", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, nil, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestServeRejectsBadConfig(t *testing.T) {
	_, err := execute(t, nil, "serve", "--default-width", "0")
	assert.Error(t, err)
}
