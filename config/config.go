package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	stdlog "log"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gwos/tdt/logzer"
	"github.com/gwos/tdt/report"
	"github.com/gwos/tdt/sdk/instant"
	sdklog "github.com/gwos/tdt/sdk/log"
	"github.com/gwos/tdt/sdk/tdt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Report formats
const (
	FormatText = report.FormatText
	FormatJSON = report.FormatJSON
)

// Report sections
const (
	SectionTicks     = report.SectionTicks
	SectionBreakdown = report.SectionBreakdown
	SectionAll       = report.SectionAll
	SectionPretty    = report.SectionPretty
)

// LogLevel defines levels in logrus-style
type LogLevel int

// Enum levels
const (
	Error LogLevel = iota
	Warn
	Info
	Debug
	Trace
)

func (l LogLevel) String() string {
	return [...]string{"Error", "Warn", "Info", "Debug", "Trace"}[l]
}

// Engine defines the defaults of computations
type Engine struct {
	// Start accepts RFC3339, date, epoch milliseconds, "epoch", or "now"
	Start instant.Instant `env:"START" yaml:"start"`
	// End is the clock's now when empty
	End      instant.Instant `env:"END" yaml:"end"`
	Unit     tdt.Unit        `env:"UNIT" yaml:"unit"`
	MaxUnits int             `env:"MAXUNITS" yaml:"maxUnits"`
	// Location accepts IANA name for reading calendar fields,
	// empty keeps the location of the end instant
	Location string `env:"LOCATION" yaml:"location,omitempty"`
}

// Report defines the one-shot output
type Report struct {
	// Format accepts "text"|"json"
	Format   string   `env:"FORMAT" yaml:"format"`
	Sections []string `env:"SECTIONS" envSeparator:"," yaml:"sections"`
}

// Controller defines HTTP API configuration
type Controller struct {
	Enabled bool `env:"ENABLED" yaml:"enabled"`
	// Addr accepts value for combined "host:port"
	// used as `http.Server{Addr}`
	Addr         string        `env:"ADDR" yaml:"addr"`
	ReadTimeout  time.Duration `env:"READTIMEOUT" yaml:"-"`
	WriteTimeout time.Duration `env:"WRITETIMEOUT" yaml:"-"`
	StartTimeout time.Duration `env:"STARTTIMEOUT" yaml:"-"`
	StopTimeout  time.Duration `env:"STOPTIMEOUT" yaml:"-"`
}

// Watch defines periodic logging of elapsed time since Engine.Start
type Watch struct {
	Enabled bool `env:"ENABLED" yaml:"enabled"`
	// Schedule accepts cron spec with seconds field
	Schedule string `env:"SCHEDULE" yaml:"schedule"`
}

// Log defines logger configuration
type Log struct {
	// Condense accepts time duration for condensing similar records
	// if 0 turn off condensing
	Condense time.Duration `env:"CONDENSE" yaml:"condense"`
	// File accepts file path to log in addition to stdout
	File        string `env:"FILE" yaml:"file"`
	FileMaxSize int64  `env:"FILEMAXSIZE" yaml:"fileMaxSize"`
	// Log files are rotated count times before being removed.
	// If count is 0, old versions are removed rather than rotated.
	FileRotate int      `env:"FILEROTATE" yaml:"fileRotate"`
	Level      LogLevel `env:"LEVEL" yaml:"level"`
	Colors     bool     `env:"COLORS" yaml:"colors"`
	TimeFormat string   `env:"TIMEFORMAT" yaml:"timeFormat"`
}

// Config defines TDT configuration
type Config struct {
	Engine     Engine     `envPrefix:"ENGINE_" yaml:"engine"`
	Report     Report     `envPrefix:"REPORT_" yaml:"report"`
	Controller Controller `envPrefix:"CONTROLLER_" yaml:"controller"`
	Watch      Watch      `envPrefix:"WATCH_" yaml:"watch"`
	Log        Log        `envPrefix:"LOG_" yaml:"log"`
}

func defaults() Config {
	return Config{
		Engine: Engine{
			Start:    instant.New(tdt.Epoch),
			Unit:     tdt.DefaultUnit,
			MaxUnits: tdt.DefaultMaxUnits,
		},
		Report: Report{
			Format:   FormatText,
			Sections: report.Sections(),
		},
		Controller: Controller{
			Addr:         ":8089",
			ReadTimeout:  time.Second * 10,
			WriteTimeout: time.Second * 20,
			StartTimeout: time.Second * 4,
			StopTimeout:  time.Second * 4,
		},
		Watch: Watch{
			Schedule: "*/10 * * * * *",
		},
		Log: Log{
			Condense:    0,
			FileMaxSize: 1024 * 1024 * 10, // 10MB
			FileRotate:  5,
			Level:       1,
			Colors:      false,
			TimeFormat:  time.RFC3339,
		},
	}
}

// Load merges defaults, file, env, and cli arguments, then inits logger.
// The logger gets defaults on error.
func Load(args []string) (_ *Config, err error) {
	/* buffer the logging while configuring */
	logBuf := &logzer.LogBuffer{
		Level: zerolog.TraceLevel,
		Size:  16,
	}
	log.Logger = zerolog.New(logBuf).
		With().Timestamp().Caller().Logger()
	log.Info().Msgf("Build info: %s / %s", buildTag, buildTime)

	c := new(Config)
	*c = defaults()
	defer func() {
		/* init logger and flush buffer */
		if err != nil {
			*c = defaults()
		}
		c.initLogger()
		logzer.WriteLogBuffer(logBuf)
	}()

	flags, err := parseFlags(args)
	if err != nil {
		return nil, err
	}
	if data, err := os.ReadFile(c.ConfigPath()); err != nil {
		log.Debug().Err(err).
			Str("configPath", c.ConfigPath()).
			Msg("could not read config")
	} else {
		if err := yaml.Unmarshal(data, c); err != nil {
			log.Err(err).
				Str("configData", string(data)).
				Str("configPath", c.ConfigPath()).
				Msg("could not parse config")
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := applyEnv(c); err != nil {
		log.Warn().Err(err).
			Msg("could not apply env vars")
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := flags.apply(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ConfigPath returns config file path
func (cfg Config) ConfigPath() string {
	configPath := os.Getenv(ConfigEnv)
	if configPath == "" {
		configPath = ConfigName
		if wd, err := os.Getwd(); err == nil {
			configPath = path.Join(wd, ConfigName)
		}
	}
	return configPath
}

// Validate checks values that decoders cannot
func (cfg Config) Validate() error {
	var ee []error
	if !cfg.Engine.Unit.IsValid() {
		ee = append(ee, fmt.Errorf("%w, expected %s",
			&tdt.UnitError{Unit: string(cfg.Engine.Unit)}, unitNames()))
	}
	if cfg.Engine.MaxUnits < 0 {
		ee = append(ee, fmt.Errorf("maxUnits must not be negative: %d", cfg.Engine.MaxUnits))
	}
	if _, err := cfg.Engine.location(); err != nil {
		ee = append(ee, err)
	}
	if cfg.Report.Format != FormatText && cfg.Report.Format != FormatJSON {
		ee = append(ee, fmt.Errorf("unknown report format: %q", cfg.Report.Format))
	}
	for _, s := range cfg.Report.Sections {
		switch s {
		case SectionTicks, SectionBreakdown, SectionAll, SectionPretty:
		default:
			ee = append(ee, fmt.Errorf("unknown report section: %q", s))
		}
	}
	if len(ee) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(ee...))
	}
	return nil
}

func (c Engine) location() (*time.Location, error) {
	if c.Location == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Location)
}

// NewEngine returns engine configured with defaults
func (cfg Config) NewEngine(opts ...tdt.Option) (*tdt.Engine, error) {
	loc, err := cfg.Engine.location()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	start := cfg.Engine.Start.Time
	if start.IsZero() {
		start = tdt.Epoch
	}
	return tdt.NewEngine(append([]tdt.Option{
		tdt.WithStart(start),
		tdt.WithUnit(cfg.Engine.Unit),
		tdt.WithMaxUnits(cfg.Engine.MaxUnits),
		tdt.WithLocation(loc),
	}, opts...)...), nil
}

// Hashsum calculates FNV non-cryptographic hash of JSON dump suitable for checking the equality
func (cfg Config) Hashsum() ([]byte, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	h := fnv.New128a()
	_, _ = h.Write(b)
	return h.Sum(nil), nil
}

func (cfg Config) initLogger() {
	if cfg.Log.Level > Trace {
		cfg.Log.Level = Trace
	}
	if cfg.Log.Level < Error {
		cfg.Log.Level = Error
	}
	lvl := [...]zerolog.Level{3, 2, 1, 0, -1}[cfg.Log.Level]
	if lvl <= zerolog.DebugLevel {
		cfg.Log.Condense = 0
	}
	opts := []logzer.Option{
		logzer.WithColors(cfg.Log.Colors),
		logzer.WithCondense(cfg.Log.Condense),
		logzer.WithLastErrors(10),
		logzer.WithLevel(lvl),
		logzer.WithTimeFormat(cfg.Log.TimeFormat),
	}
	if cfg.Log.File != "" {
		opts = append(opts, logzer.WithLogFile(&logzer.LogFile{
			FilePath: cfg.Log.File,
			MaxSize:  cfg.Log.FileMaxSize,
			Rotate:   cfg.Log.FileRotate,
		}))
	}

	/* prevent writes in global logger */
	log.Logger = zerolog.Nop()
	/* reset to defaults */
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	/* apply options */
	w := logzer.NewLoggerWriter(opts...)
	/* set global logger */
	log.Logger = zerolog.New(w).
		With().Timestamp().Caller().
		Logger()
	/* adapt SDK logger */
	sdklog.Logger = slog.New(&logzer.SLogHandler{CallerSkipFrame: 3})
	/* set as standard logger output */
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

// String returns YAML dump, used for debug output
func (cfg Config) String() string {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err.Error()
	}
	return strings.TrimSpace(string(out))
}
