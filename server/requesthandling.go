package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wbrown/asciipng/config"
	"github.com/wbrown/asciipng/logging"
	"github.com/wbrown/asciipng/perf"
)

const RequestIDHeader = "X-Request-Id"

type Handler func(c *RequestContext) ResponseData
type Middleware func(h Handler) Handler

func applyMiddlewares(h Handler, ms []Middleware) Handler {
	result := h
	for i := len(ms) - 1; i >= 0; i-- {
		result = ms[i](result)
	}
	return result
}

// Router registers Handlers on a ServeMux and builds the RequestContext
// every one of them receives.
type Router struct {
	mux           *http.ServeMux
	cfg           config.Config
	perfCollector *perf.PerfCollector
	middlewares   []Middleware
}

func NewRouter(cfg config.Config, perfCollector *perf.PerfCollector, ms ...Middleware) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		cfg:           cfg,
		perfCollector: perfCollector,
		middlewares:   ms,
	}
}

// Handle serves pattern (ServeMux syntax, e.g. "POST /api/asciipng") with h.
// route names the handler in logs and perf records.
func (r *Router) Handle(pattern, route string, h Handler) {
	h = applyMiddlewares(h, r.middlewares)
	r.mux.HandleFunc(pattern, func(rw http.ResponseWriter, req *http.Request) {
		requestID := req.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		logger := logging.With().
			Str("request_id", requestID).
			Str("route", route).
			Logger()

		req.Body = http.MaxBytesReader(rw, req.Body, r.cfg.MaxUploadBytes)

		c := &RequestContext{
			Route:         route,
			Req:           req,
			Logger:        &logger,
			RequestID:     requestID,
			Config:        r.cfg,
			PerfCollector: r.perfCollector,
		}
		rw.Header().Set(RequestIDHeader, requestID)
		doRequest(rw, c, h)
	})
}

func (r *Router) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(rw, req)
}

type RequestContext struct {
	Route     string
	Req       *http.Request
	Logger    *zerolog.Logger
	RequestID string
	Config    config.Config

	Perf          *perf.RequestPerf
	PerfCollector *perf.PerfCollector
}

func (c *RequestContext) Context() context.Context {
	return c.Req.Context()
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse replies with {"error": message}. errs are attached for
// logging and never shown to the client.
func (c *RequestContext) ErrorResponse(status int, message string, errs ...error) ResponseData {
	res := ResponseData{
		StatusCode: status,
		Errors:     errs,
	}
	res.WriteJson(errorBody{Error: message}, c.Perf)
	return res
}

type ResponseData struct {
	StatusCode int
	Body       *bytes.Buffer
	Errors     []error

	header http.Header
}

var _ http.ResponseWriter = &ResponseData{}

func (rd *ResponseData) Header() http.Header {
	if rd.header == nil {
		rd.header = make(http.Header)
	}

	return rd.header
}

func (rd *ResponseData) Write(p []byte) (n int, err error) {
	if rd.Body == nil {
		rd.Body = new(bytes.Buffer)
	}

	return rd.Body.Write(p)
}

func (rd *ResponseData) WriteHeader(status int) {
	rd.StatusCode = status
}

// WriteJson encodes data without HTML escaping so markup in the art stays
// readable on the wire.
func (rd *ResponseData) WriteJson(data any, rp *perf.RequestPerf) {
	if rp != nil {
		rp.StartBlock("JSON", "Encode response")
		defer rp.EndBlock()
	}
	if rd.Body == nil {
		rd.Body = new(bytes.Buffer)
	}
	enc := json.NewEncoder(rd.Body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		panic(err)
	}
	rd.Header().Set("Content-Type", "application/json")
}

func doRequest(rw http.ResponseWriter, c *RequestContext, h Handler) {
	defer func() {
		// Last resort. Anything that should produce a JSON error belongs in
		// panicCatcherMiddleware.
		if recovered := recover(); recovered != nil {
			rw.WriteHeader(http.StatusInternalServerError)
			logging.LogPanicValue(c.Logger, recovered, "request panicked and was not handled")
			rw.Write([]byte("There was a problem handling your request.\n"))
		}
	}()

	res := h(c)

	if res.StatusCode == 0 {
		res.StatusCode = http.StatusOK
	}

	for name, vals := range res.Header() {
		for _, val := range vals {
			rw.Header().Add(name, val)
		}
	}
	if res.Body != nil {
		rw.Header().Set("Content-Length", strconv.Itoa(res.Body.Len()))
	}
	rw.WriteHeader(res.StatusCode)

	if res.Body != nil && c.Req.Method != http.MethodHead {
		if _, err := res.Body.WriteTo(rw); err != nil {
			c.Logger.Warn().Err(err).Msg("failed to write response body")
		}
	}
}
