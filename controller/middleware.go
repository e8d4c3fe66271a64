package controller

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwos/tdt/cache"
	"github.com/gwos/tdt/tracing"
	"github.com/hashicorp/go-uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	headerRequestID = "X-Request-Id"
	headerCache     = "X-Cache"
	keyRequestID    = "requestID"
	ckRequestID     = "ckRequestID"
)

// requestIDs combines random fixed and incremental parts into UUID
type requestIDs struct {
	prefix  []byte
	counter *gocache.Cache
}

func newRequestIDs() *requestIDs {
	prefix := []byte("aaaabbbbccccdddd")
	if randBuf, err := uuid.GenerateRandomBytes(16); err == nil {
		copy(prefix, randBuf)
	} else {
		/* fallback with multiplied timestamp */
		binary.PutVarint(prefix, time.Now().UnixNano())
		binary.PutVarint(prefix[6:], time.Now().UnixNano())
	}
	counter := gocache.New(gocache.NoExpiration, 0)
	counter.Set(ckRequestID, uint64(0), gocache.NoExpiration)
	return &requestIDs{prefix: prefix, counter: counter}
}

func (ids *requestIDs) next() string {
	buf := make([]byte, 16)
	copy(buf, ids.prefix)
	if inc, err := ids.counter.IncrementUint64(ckRequestID, 1); err == nil {
		binary.PutUvarint(buf, inc)
	} else {
		/* fallback with timestamp */
		binary.PutVarint(buf, time.Now().UnixNano())
	}
	id, _ := uuid.FormatUUID(buf)
	return id
}

// requestID keeps the incoming header or generates new one
func (controller *Controller) requestID(c *gin.Context) {
	id := c.GetHeader(headerRequestID)
	if id == "" {
		id = controller.requestIDs.next()
	}
	c.Set(keyRequestID, id)
	c.Header(headerRequestID, id)
	c.Next()
}

func (controller *Controller) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	lvl := zerolog.DebugLevel
	switch {
	case status >= http.StatusInternalServerError:
		lvl = zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		lvl = zerolog.InfoLevel
	}
	log.WithLevel(lvl).
		Str("requestID", c.GetString(keyRequestID)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("request")
}

func (controller *Controller) countRequest(c *gin.Context) {
	c.Next()
	controller.requests.WithLabelValues(operation(c), strconv.Itoa(c.Writer.Status())).Inc()
}

// traceRequest wraps the request in a server span named by operation
func (controller *Controller) traceRequest(c *gin.Context) {
	ctx, span := tracing.StartRequestSpan(c.Request, "controller: "+operation(c))
	c.Request = c.Request.WithContext(ctx)
	c.Next()

	var err error
	if last := c.Errors.Last(); last != nil {
		err = last.Err
	}
	tracing.EndTraceSpan(span,
		tracing.TraceAttrStr("requestID", c.GetString(keyRequestID)),
		tracing.TraceAttrInt("status", c.Writer.Status()),
		tracing.TraceAttrError(err),
		tracing.TraceAttrStrDbg("query", func() string { return c.Request.URL.RawQuery }),
	)
}

// operation names the route without the API prefix
func operation(c *gin.Context) string {
	op := strings.TrimPrefix(strings.TrimPrefix(c.FullPath(), "/api/v1"), "/")
	if op == "" {
		op = "unknown"
	}
	return op
}

// memoize serves responses from cache when both ends of the span are fixed
func (controller *Controller) memoize(c *gin.Context) {
	if !fixedSpan(c) {
		c.Next()
		return
	}
	ck := string(controller.requestIDs.prefix) + c.Request.URL.Path + "?" + c.Request.URL.RawQuery
	if v, ok := cache.ResultCache.Get(ck); ok {
		res := v.(cache.Result)
		c.Header(headerCache, "hit")
		c.Data(http.StatusOK, res.ContentType, res.Body)
		c.Abort()
		return
	}

	w := &bodyWriter{ResponseWriter: c.Writer}
	c.Writer = w
	c.Next()
	if w.Status() == http.StatusOK {
		cache.ResultCache.SetDefault(ck, cache.Result{
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		})
	}
}

func fixedSpan(c *gin.Context) bool {
	for _, k := range [...]string{"start", "end"} {
		v := strings.TrimSpace(c.Query(k))
		if v == "" || strings.EqualFold(v, "now") {
			return false
		}
	}
	return true
}

// bodyWriter copies the written body
type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
