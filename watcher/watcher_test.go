package watcher

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gwos/tdt/sdk/tdt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestEngine(maxUnits int) *tdt.Engine {
	return tdt.NewEngine(
		tdt.WithClock(tdt.FixedClock(time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC))),
		tdt.WithStart(time.Date(1997, 6, 15, 0, 0, 0, 0, time.UTC)),
		tdt.WithMaxUnits(maxUnits),
	)
}

func TestTick(t *testing.T) {
	tests := []struct {
		maxUnits int
		expected string
	}{
		{3, "2025-09-06T00:00:00Z\t28 years, 2 months, 22 days\n"},
		{1, "2025-09-06T00:00:00Z\t28 years\n"},
	}
	for _, tc := range tests {
		out := &syncBuffer{}
		w, err := New(newTestEngine(tc.maxUnits), "*/10 * * * * *", out)
		require.NoError(t, err)
		require.NoError(t, w.Tick())
		assert.Equal(t, tc.expected, out.String())
	}

	w, err := New(newTestEngine(3), "@hourly", nil)
	require.NoError(t, err)
	assert.NoError(t, w.Tick())
}

func TestNewInvalidSchedule(t *testing.T) {
	for _, schedule := range []string{"", "every tuesday", "61 * * * * *"} {
		_, err := New(newTestEngine(3), schedule, nil)
		assert.Error(t, err, schedule)
	}
}

func TestStartStop(t *testing.T) {
	out := &syncBuffer{}
	w, err := New(newTestEngine(3), "* * * * * *", out)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "28 years, 2 months, 22 days")
	}, time.Second*3, time.Millisecond*50)

	ctx := w.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second * 3):
		t.Error("watcher did not stop")
	}
	<-w.Stop().Done()
}

func TestTickSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	w, err := New(newTestEngine(2), "@hourly", nil)
	require.NoError(t, err)
	require.NoError(t, w.Tick())
	require.NoError(t, w.Tick())

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "watcher: tick", ended[1].Name())
	attrs := map[string]any{}
	for _, kv := range ended[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(2), attrs["tick"])
	assert.Equal(t, "28 years, 2 months", attrs["elapsed"])
	assert.Equal(t, false, attrs["err"])
}
