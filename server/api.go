package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/wbrown/asciipng"
	"github.com/wbrown/asciipng/oops"
)

type asciiBody struct {
	ASCII string `json:"ascii"`
}

// APIASCIIPng converts an uploaded PNG into HTML character art.
//
// The multipart form carries the image in "file" and an optional "width".
// A missing, unparsable or zero width falls back to the configured default.
func APIASCIIPng(conv *asciipng.Converter) Handler {
	return func(c *RequestContext) ResponseData {
		c.Perf.StartBlock("FORM", "Parse multipart form")
		err := c.Req.ParseMultipartForm(c.Config.MaxUploadBytes)
		c.Perf.EndBlock()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return c.ErrorResponse(http.StatusRequestEntityTooLarge, "File too large!", oops.New(err, "upload exceeds %d bytes", tooLarge.Limit))
			}
			return c.ErrorResponse(http.StatusInternalServerError, "Error parsing the file!", oops.New(err, "failed to parse multipart form"))
		}
		defer c.Req.MultipartForm.RemoveAll()

		file, _, err := c.Req.FormFile("file")
		if err != nil {
			return c.ErrorResponse(http.StatusBadRequest, "No file uploaded!")
		}
		defer file.Close()

		width, _ := strconv.Atoi(c.Req.FormValue("width"))
		if width == 0 {
			width = c.Config.DefaultWidth
		}
		if width < 0 || width > c.Config.MaxWidth {
			return c.ErrorResponse(http.StatusBadRequest, "Width must be between 1 and "+strconv.Itoa(c.Config.MaxWidth)+"!")
		}

		buf, err := io.ReadAll(file)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, "Error parsing the file!", oops.New(err, "failed to read upload"))
		}

		c.Perf.StartBlock("DECODE", "Decode PNG")
		img, err := conv.Decode(buf)
		c.Perf.EndBlock()
		if err != nil {
			return pipelineError(c, err)
		}

		c.Perf.StartBlock("RESIZE", "Bilinear resample")
		resized, err := conv.Resize(img, width)
		c.Perf.EndBlock()
		if err != nil {
			return pipelineError(c, err)
		}

		c.Perf.StartBlock("RENDER", "Map glyphs")
		html := conv.Render(resized).HTML()
		c.Perf.EndBlock()

		c.Logger.Info().
			Int("source_width", img.Width).
			Int("source_height", img.Height).
			Int("width", resized.Width).
			Int("height", resized.Height).
			Msg("converted upload")

		var res ResponseData
		res.WriteJson(asciiBody{ASCII: html}, c.Perf)
		return res
	}
}

// pipelineError reports only the error kind to the client; the full chain,
// including inflate library errors, goes to the log.
func pipelineError(c *RequestContext, err error) ResponseData {
	message := "Error converting the image!"
	if kind := asciipng.Kind(err); kind != nil {
		message = kind.Error()
	}
	return c.ErrorResponse(http.StatusInternalServerError, message, err)
}

func Healthz(c *RequestContext) ResponseData {
	var res ResponseData
	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res.Write([]byte("ok"))
	return res
}

type perfEntry struct {
	Route  string      `json:"route"`
	Method string      `json:"method"`
	Path   string      `json:"path"`
	Ms     float64     `json:"ms"`
	Blocks []perfBlock `json:"blocks"`
}

type perfBlock struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Ms          float64 `json:"ms"`
}

// DebugPerf lists the timings of the most recent requests.
func DebugPerf(c *RequestContext) ResponseData {
	entries := []perfEntry{}
	if c.PerfCollector != nil {
		for _, rp := range c.PerfCollector.GetPerfCopy().AllRequests {
			entry := perfEntry{
				Route:  rp.Route,
				Method: rp.Method,
				Path:   rp.Path,
				Ms:     float64(rp.Duration().Nanoseconds()) / 1000 / 1000,
			}
			for i := range rp.Blocks {
				entry.Blocks = append(entry.Blocks, perfBlock{
					Category:    rp.Blocks[i].Category,
					Description: rp.Blocks[i].Description,
					Ms:          rp.Blocks[i].DurationMs(),
				})
			}
			entries = append(entries, entry)
		}
	}

	var res ResponseData
	res.WriteJson(entries, nil)
	return res
}
