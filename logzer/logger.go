package logzer

import (
	"container/ring"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

var (
	mu        sync.Mutex
	logFile   io.WriteCloser
	errBuffer = &LogBuffer{
		Level: zerolog.ErrorLevel,
		Size:  10,
	}
	current zerolog.LevelWriter = zerolog.MultiLevelWriter(os.Stdout)
)

type writerOptions struct {
	colors     bool
	condense   time.Duration
	lastErrors int
	logFile    io.WriteCloser
	out        io.Writer
	timeFormat string
}

// Option defines logger writer option type
type Option func(*writerOptions)

// WithColors sets formatter option
func WithColors(b bool) Option {
	return func(o *writerOptions) { o.colors = b }
}

// WithCondense enables condensing similar records
func WithCondense(d time.Duration) Option {
	return func(o *writerOptions) { o.condense = d }
}

// WithLastErrors sets count of buffered error writes
func WithLastErrors(n int) Option {
	return func(o *writerOptions) { o.lastErrors = n }
}

// WithLevel sets global level
func WithLevel(lvl zerolog.Level) Option {
	return func(*writerOptions) { zerolog.SetGlobalLevel(lvl) }
}

// WithLogFile sets filelog option, writes go to stdout and file
func WithLogFile(w io.WriteCloser) Option {
	return func(o *writerOptions) { o.logFile = w }
}

// WithOutput replaces stdout
func WithOutput(w io.Writer) Option {
	return func(o *writerOptions) { o.out = w }
}

// WithTimeFormat sets formatter option
func WithTimeFormat(s string) Option {
	return func(o *writerOptions) { o.timeFormat = s }
}

// NewLoggerWriter returns writer chain for zerolog.New:
// condenser -> console formatter and last errors buffer.
// The previous log file is closed and buffered errors are kept.
func NewLoggerWriter(opts ...Option) zerolog.LevelWriter {
	mu.Lock()
	defer mu.Unlock()

	o := &writerOptions{
		lastErrors: 10,
		out:        os.Stdout,
		timeFormat: time.RFC3339,
	}
	for _, opt := range opts {
		opt(o)
	}

	if logFile != nil && logFile != o.logFile {
		_ = logFile.Close()
	}
	logFile = o.logFile

	lastErrors := errBuffer.Records()
	errBuffer = &LogBuffer{Level: zerolog.ErrorLevel, Size: o.lastErrors}
	for _, p := range lastErrors {
		_, _ = errBuffer.WriteLevel(p.lvl, p.buf)
	}

	formatter := &zerolog.ConsoleWriter{
		Out:        o.out,
		NoColor:    !o.colors,
		TimeFormat: o.timeFormat,
	}
	if logFile != nil {
		formatter.Out = zerolog.MultiLevelWriter(o.out, logFile)
	}
	current = &CondenseWriter{
		Condense:    o.condense,
		LevelWriter: zerolog.MultiLevelWriter(formatter, errBuffer),
	}
	return current
}

// LastErrors returns last error writes
func LastErrors() []LogRecord {
	mu.Lock()
	defer mu.Unlock()
	return errBuffer.Records()
}

// WriteLogBuffer writes buffered data to current writer
func WriteLogBuffer(lb *LogBuffer) {
	mu.Lock()
	w := current
	mu.Unlock()
	lvl := zerolog.GlobalLevel()
	for _, p := range lb.Records() {
		if p.lvl >= lvl {
			_, _ = w.WriteLevel(p.lvl, p.buf)
		}
	}
}

// CondenseWriter handles similar writes by caller field
type CondenseWriter struct {
	zerolog.LevelWriter
	mu       sync.Mutex
	once     sync.Once
	cache    *cache.Cache
	callerRe *regexp.Regexp
	Condense time.Duration
}

// Write implements io.Writer interface
func (w *CondenseWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *CondenseWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	w.once.Do(func() {
		defaultExpiration, cleanupInterval := time.Minute*10, time.Second*10
		if w.Condense > 0 {
			defaultExpiration = w.Condense * 2
			cleanupInterval = w.Condense / 4
		}
		w.cache = cache.New(defaultExpiration, cleanupInterval)
		w.cache.OnEvicted(w.onEvicted)
		w.callerRe = regexp.MustCompile(`"` + zerolog.CallerFieldName + `":"[^"]*"`)
	})
	if w.Condense <= 0 {
		return w.LevelWriter.WriteLevel(lvl, p)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	/* cache key is level and caller */
	ck := string(append([]byte{byte(lvl), ':'}, w.callerRe.Find(p)...))
	/* workaround on https://github.com/patrickmn/go-cache/issues/48 */
	w.cache.DeleteExpired()
	if _, ok := w.cache.Get(ck); ok {
		_ = w.cache.Increment(ck, 1)
		return len(p), nil
	}
	_ = w.cache.Add(ck, uint16(0), w.Condense)
	return w.LevelWriter.WriteLevel(lvl, p)
}

// onEvicted writes summary record for the condensed ones
func (w *CondenseWriter) onEvicted(ck string, i interface{}) {
	v := i.(uint16)
	if v == 0 {
		return
	}
	lvl, caller := zerolog.Level(ck[0]), ck[2:]
	buf := append(make([]byte, 0, 200), `{"`...)
	buf = append(buf, zerolog.LevelFieldName...)
	buf = append(buf, `":"`...)
	buf = append(buf, lvl.String()...)
	buf = append(buf, `","`...)
	buf = append(buf, zerolog.TimestampFieldName...)
	buf = append(buf, `":`...)
	buf = strconv.AppendInt(buf, time.Now().UnixMilli(), 10)
	buf = append(buf, ',')
	if caller != "" {
		buf = append(buf, caller...)
		buf = append(buf, ',')
	}
	buf = append(buf, '"')
	buf = append(buf, zerolog.MessageFieldName...)
	buf = append(buf, `":"[condensed `...)
	buf = strconv.AppendInt(buf, int64(v), 10)
	buf = append(buf, ` more entries last `...)
	buf = strconv.AppendInt(buf, int64(w.Condense.Seconds()), 10)
	buf = append(buf, ` seconds]"}`...)
	_, _ = w.LevelWriter.WriteLevel(lvl, buf)
}

// LogBuffer collects writes if level passed
type LogBuffer struct {
	mu    sync.Mutex
	once  sync.Once
	ring  *ring.Ring
	Level zerolog.Level
	Size  int
}

func (lb *LogBuffer) init() {
	lb.once.Do(func() {
		if lb.Size < 1 {
			lb.Size = 1
		}
		lb.ring = ring.New(lb.Size)
	})
}

// Records returns collected writes, oldest first
func (lb *LogBuffer) Records() []LogRecord {
	lb.init()
	lb.mu.Lock()
	defer lb.mu.Unlock()
	rec := []LogRecord{}
	lb.ring.Do(func(p interface{}) {
		if p != nil {
			rec = append(rec, p.(LogRecord))
		}
	})
	return rec
}

// Write implements io.Writer interface
func (lb *LogBuffer) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel implements zerolog.LevelWriter interface
func (lb *LogBuffer) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	lb.init()
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lvl >= lb.Level {
		/* store the copy as source could be updated */
		cp := make([]byte, len(p))
		copy(cp, p)
		lb.ring.Value = LogRecord{cp, lvl}
		lb.ring = lb.ring.Next()
	}
	return len(p), nil
}

// LogRecord wraps JSON-like data from logger
type LogRecord struct {
	buf []byte
	lvl zerolog.Level
}

// MarshalJSON implements Marshaller interface
func (p LogRecord) MarshalJSON() ([]byte, error) { return p.buf, nil }
