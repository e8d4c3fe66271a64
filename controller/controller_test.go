package controller

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gwos/tdt/config"
	"github.com/gwos/tdt/logzer"
	"github.com/gwos/tdt/report"
	"github.com/gwos/tdt/sdk/tdt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

var runDate = time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	cfg := &config.Config{
		Controller: config.Controller{Addr: "127.0.0.1:0", StartTimeout: time.Second, StopTimeout: time.Second},
		Report:     config.Report{Format: config.FormatText, Sections: report.Sections()},
	}
	engine := tdt.NewEngine(tdt.WithClock(tdt.FixedClock(runDate)))
	return New(cfg, engine)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTicks(t *testing.T) {
	h := newTestController(t).Handler()

	tests := []struct {
		name   string
		target string
		unit   tdt.Unit
		ticks  float64
	}{
		{"defaults", "/api/v1/ticks", tdt.Seconds, 20337 * 86400},
		{"start", "/api/v1/ticks?start=1997-06-15&unit=days", tdt.Days, 10310},
		{"epoch keyword", "/api/v1/ticks?start=epoch&unit=days", tdt.Days, 20337},
		{"reversed", "/api/v1/ticks?start=2025-09-06T00:00:01Z&end=2025-09-06&unit=minutes", tdt.Minutes, -1},
		{"epoch millis", "/api/v1/ticks?start=0&end=1500&unit=milliseconds", tdt.Milliseconds, 1500},
		{"year-like millis", "/api/v1/ticks?start=1997&end=epoch&unit=milliseconds", tdt.Milliseconds, -1997},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, h, tc.target)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			dto := decode[ticksDTO](t, w)
			assert.Equal(t, tc.unit, dto.Unit)
			assert.Equal(t, tc.ticks, dto.Ticks)
			assert.Equal(t, int64(tc.ticks), dto.WholeTicks)
		})
	}
}

func TestBreakdown(t *testing.T) {
	h := newTestController(t).Handler()

	w := get(t, h, "/api/v1/breakdown?start=1997-06-15")
	require.Equal(t, http.StatusOK, w.Code)
	dto := decode[breakdownDTO](t, w)
	assert.Equal(t, runDate, dto.End)
	assert.Equal(t, tdt.CalendarBreakdown{Years: 28, Months: 2, Days: 22}, dto.Breakdown)

	w = get(t, h, "/api/v1/breakdown/all?start=2024-01-31&end=2024-03-01")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[breakdownAllDTO](t, w)
	assert.Equal(t, int64(30), all.All.Days)
	assert.Equal(t, int64(4), all.All.Weeks)
	assert.Equal(t, int64(2_592_000_000_000_000), all.All.Nanoseconds)
	assert.False(t, all.Saturated)
}

func TestPretty(t *testing.T) {
	h := newTestController(t).Handler()

	tests := map[string]string{
		"/api/v1/pretty?start=1997-06-15":                          "28 years, 2 months, 22 days",
		"/api/v1/pretty?start=1997-06-15T10:20:00Z&maxUnits=0":     "28 years, 2 months, 21 days, 13 hours, 40 minutes",
		"/api/v1/pretty?start=1997-06-15&maxUnits=1":               "28 years",
		"/api/v1/pretty?start=2025-09-06T00:00:30Z":                "-30 seconds",
		"/api/v1/pretty?start=2025-09-06T00:00:00Z&end=2025-09-06": "0 seconds",
	}
	for target, expected := range tests {
		t.Run(target, func(t *testing.T) {
			w := get(t, h, target)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, expected, decode[prettyDTO](t, w).Pretty)
		})
	}
}

func TestBadRequest(t *testing.T) {
	controller := newTestController(t)
	h := controller.Handler()

	for _, target := range []string{
		"/api/v1/ticks?unit=fortnights",
		"/api/v1/ticks?start=yesterday",
		"/api/v1/breakdown?end=tomorrow",
		"/api/v1/pretty?maxUnits=three",
		"/api/v1/report?format=xml",
		"/api/v1/report?sections=ticks,weeks",
		"/api/v1/report?unit=eons",
	} {
		t.Run(target, func(t *testing.T) {
			w := get(t, h, target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(controller.unsupported))
	assert.Equal(t, float64(3), testutil.ToFloat64(controller.requests.WithLabelValues("report", "400")))
}

func TestReport(t *testing.T) {
	h := newTestController(t).Handler()
	golden, err := os.ReadFile("../report/testdata/leap_february_text.golden")
	require.NoError(t, err)

	target := "/api/v1/report?start=2024-01-31&end=2024-03-01&unit=days"
	w := get(t, h, target)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, string(golden), w.Body.String())
	assert.Empty(t, w.Header().Get(headerCache))

	w = get(t, h, target)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get(headerCache))
	assert.Equal(t, string(golden), w.Body.String())

	w = get(t, h, "/api/v1/report?start=2024-01-31&end=2024-03-01&unit=days&format=json&sections=pretty")
	require.Equal(t, http.StatusOK, w.Code)
	r := decode[report.Report](t, w)
	require.NotNil(t, r.Pretty)
	assert.Equal(t, "30 days", *r.Pretty)
	assert.Nil(t, r.Ticks)
}

func TestRequestID(t *testing.T) {
	h := newTestController(t).Handler()

	w1 := get(t, h, "/api/v1/version")
	w2 := get(t, h, "/api/v1/version")
	id1, id2 := w1.Header().Get(headerRequestID), w2.Header().Get(headerRequestID)
	assert.Len(t, id1, 36)
	assert.Len(t, id2, 36)
	assert.NotEqual(t, id1, id2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
	req.Header.Set(headerRequestID, "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(headerRequestID))
	assert.Equal(t, config.GetBuildInfo(), decode[config.BuildInfo](t, w))
}

func TestStats(t *testing.T) {
	savedLogger, savedLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = savedLogger
		zerolog.SetGlobalLevel(savedLevel)
	})
	log.Logger = zerolog.New(logzer.NewLoggerWriter(
		logzer.WithOutput(io.Discard),
		logzer.WithLevel(zerolog.InfoLevel),
	))
	log.Info().Msg("ticks computed")
	log.Error().Str("unit", "fortnights").Msg("could not count ticks")

	w := get(t, newTestController(t).Handler(), "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[struct {
		Tag        string           `json:"tag"`
		LastErrors []map[string]any `json:"lastErrors"`
	}](t, w)
	assert.Equal(t, config.GetBuildInfo().Tag, stats.Tag)
	require.NotEmpty(t, stats.LastErrors)
	last := stats.LastErrors[len(stats.LastErrors)-1]
	assert.Equal(t, "could not count ticks", last["message"])
	assert.Equal(t, "fortnights", last["unit"])
	for _, rec := range stats.LastErrors {
		assert.NotEqual(t, "ticks computed", rec["message"])
	}
}

func TestMetrics(t *testing.T) {
	h := newTestController(t).Handler()
	_ = get(t, h, "/api/v1/ticks?start=epoch")
	_ = get(t, h, "/api/v1/ticks?unit=weeks")

	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `tdt_requests_total{code="200",operation="ticks"} 1`)
	assert.Contains(t, body, `tdt_requests_total{code="400",operation="ticks"} 1`)
	assert.Contains(t, body, `tdt_unsupported_unit_total 1`)
}

func TestStartStop(t *testing.T) {
	controller := newTestController(t)
	require.NoError(t, controller.Start())
	require.NoError(t, controller.Start())

	resp, err := http.Get("http://" + controller.Addr() + "/api/v1/pretty?start=1997-06-15")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "28 years, 2 months, 22 days")

	assert.NoError(t, controller.Stop(context.Background()))
	assert.NoError(t, controller.Stop(context.Background()))
}

func TestTraceRequest(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	h := newTestController(t).Handler()

	_ = get(t, h, "/api/v1/breakdown?start=1997-06-15")
	w := get(t, h, "/api/v1/ticks?unit=fortnights")

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "controller: breakdown", ended[0].Name())
	assert.Equal(t, "controller: ticks", ended[1].Name())
	attrs := map[string]any{}
	for _, kv := range ended[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(http.StatusBadRequest), attrs["status"])
	assert.Equal(t, true, attrs["err"])
	assert.Contains(t, attrs["error"], "fortnights")
	assert.Equal(t, w.Header().Get(headerRequestID), attrs["requestID"])
}

func TestWaitReady(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	assert.NoError(t, waitReady(addr, time.Second, nil))
	require.NoError(t, ln.Close())

	started := time.Now()
	assert.Error(t, waitReady(addr, time.Millisecond*100, nil))
	assert.Less(t, time.Since(started), time.Second)

	serveErr := make(chan error, 1)
	serveErr <- http.ErrHandlerTimeout
	assert.ErrorIs(t, waitReady(addr, time.Second, serveErr), http.ErrHandlerTimeout)
	assert.NoError(t, waitReady(addr, 0, nil))
}

func TestStartBusyAddr(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	controller := newTestController(t)
	controller.ctrl.Addr = ln.Addr().String()
	assert.Error(t, controller.Start())
	assert.Empty(t, controller.Addr())
	assert.NoError(t, controller.Stop(context.Background()))
}

func TestSwagger(t *testing.T) {
	h := newTestController(t).Handler()
	w := get(t, h, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[map[string]any](t, w)
	assert.Equal(t, "/api/v1", doc["basePath"])
	assert.Contains(t, doc["paths"], "/breakdown/all")
	assert.Contains(t, doc["paths"], "/stats")
}
