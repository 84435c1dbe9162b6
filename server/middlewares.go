package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/wbrown/asciipng/logging"
	"github.com/wbrown/asciipng/oops"
	"github.com/wbrown/asciipng/perf"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err, ok := recovered.(error)
				if !ok {
					err = oops.New(nil, "recovered from panic with value: %v", recovered)
				}
				logging.LogPanicValue(c.Logger, err, "request handler panicked")
				res = c.ErrorResponse(http.StatusInternalServerError, "Internal server error!")
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
		defer func() {
			c.Perf.EndRequest()
			log := c.Logger.Debug()
			blockStack := make([]time.Time, 0)
			for i, block := range c.Perf.Blocks {
				for len(blockStack) > 0 && block.End.After(blockStack[len(blockStack)-1]) {
					blockStack = blockStack[:len(blockStack)-1]
				}
				log.Str(fmt.Sprintf("[%4.d] At %9.2fms", i, c.Perf.MsFromStart(&block)), fmt.Sprintf("%*.s[%s] %s (%.4fms)", len(blockStack)*2, "", block.Category, block.Description, block.DurationMs()))
				blockStack = append(blockStack, block.End)
			}
			log.Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, float64(c.Perf.Duration().Nanoseconds())/1000/1000))
			if c.PerfCollector != nil {
				c.PerfCollector.SubmitRun(c.Perf)
			}
		}()

		return h(c)
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		for _, err := range res.Errors {
			c.Logger.Error().Stack().
				Str("method", c.Req.Method).
				Str("path", c.Req.URL.Path).
				Int("status", res.StatusCode).
				Err(err).
				Msg("error occurred during request")
		}
		return res
	}
}
