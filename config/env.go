package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/gwos/tdt/sdk/instant"
	"github.com/gwos/tdt/sdk/tdt"
	"github.com/spf13/pflag"
)

var (
	// EnvPrefix defines name prefix for environment variables
	// with struct-path selector and value, for example:
	//    TDT_ENGINE_UNIT=days
	EnvPrefix = "TDT_"
	// ConfigEnv defines environment variable for config file path, overrides the ConfigName
	ConfigEnv = "TDT_CONFIG"
	// ConfigName defines default filename for look in work directory if ConfigEnv is empty
	ConfigName = "tdt_config.yaml"
)

// cliFlags keeps parsed arguments until file and env are applied,
// only the flags set explicitly override them
type cliFlags struct {
	fs *pflag.FlagSet

	start, end instant.Instant
	unit       string
	maxUnits   int
	location   string
	format     string
	sections   []string
	serve      bool
	addr       string
	watch      bool
	schedule   string
	logLevel   int
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{fs: pflag.NewFlagSet("tdt", pflag.ContinueOnError)}
	fs := f.fs
	/* std flag doesn't support repeated parsing in tests, using github.com/spf13/pflag instead */
	fs.StringVar(&EnvPrefix, "env-prefix", EnvPrefix,
		`prefix for environment variables`)
	fs.StringVar(&ConfigEnv, "config-env", ConfigEnv,
		`environment variable for config file path`)
	fs.Var(&f.start, "start", `start instant: RFC3339, date, epoch milliseconds, "epoch", or "now"`)
	fs.Var(&f.end, "end", `end instant, the current time if omitted`)
	fs.StringVarP(&f.unit, "unit", "u", string(tdt.DefaultUnit),
		`unit for ticks: `+unitNames())
	fs.IntVarP(&f.maxUnits, "max-units", "n", tdt.DefaultMaxUnits, `units in the pretty string, 0 keeps all`)
	fs.StringVar(&f.location, "location", "", `IANA location for calendar fields`)
	fs.StringVarP(&f.format, "format", "o", FormatText, `report format: text|json`)
	fs.StringSliceVar(&f.sections, "sections", nil, `report sections: ticks,breakdown,all,pretty`)
	fs.BoolVar(&f.serve, "serve", false, `serve HTTP API`)
	fs.StringVar(&f.addr, "addr", "", `HTTP API address`)
	fs.BoolVar(&f.watch, "watch", false, `log elapsed time on schedule`)
	fs.StringVar(&f.schedule, "schedule", "", `cron spec with seconds for --watch`)
	fs.IntVarP(&f.logLevel, "log-level", "v", int(Warn), `0:Error 1:Warn 2:Info 3:Debug 4:Trace`)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	ConfigEnv = strings.TrimPrefix(ConfigEnv, "TDT_")
	ConfigEnv = strings.TrimPrefix(ConfigEnv, EnvPrefix)
	ConfigEnv = EnvPrefix + ConfigEnv
	return f, nil
}

// unitNames returns recognized units joined for help and error messages
func unitNames() string {
	names := make([]string, 0, 9)
	for _, u := range tdt.Units() {
		names = append(names, u.String())
	}
	return strings.Join(names, "|")
}

func (f *cliFlags) apply(c *Config) error {
	changed := f.fs.Changed
	if changed("start") {
		c.Engine.Start = f.start
	}
	if changed("end") {
		c.Engine.End = f.end
	}
	if changed("unit") {
		u, err := tdt.ParseUnit(f.unit)
		if err != nil {
			return fmt.Errorf("%w: %w, expected %s", ErrInvalidConfig, err, unitNames())
		}
		c.Engine.Unit = u
	}
	if changed("max-units") {
		c.Engine.MaxUnits = f.maxUnits
	}
	if changed("location") {
		c.Engine.Location = f.location
	}
	if changed("format") {
		c.Report.Format = f.format
	}
	if changed("sections") {
		c.Report.Sections = f.sections
	}
	if changed("serve") {
		c.Controller.Enabled = f.serve
	}
	if changed("addr") {
		c.Controller.Addr = f.addr
	}
	if changed("watch") {
		c.Watch.Enabled = f.watch
	}
	if changed("schedule") {
		c.Watch.Schedule = f.schedule
	}
	if changed("log-level") {
		c.Log.Level = LogLevel(f.logLevel)
	}
	return nil
}

func applyEnv(v ...interface{}) error {
	var ee []error
	for i := range v {
		if err := env.ParseWithOptions(v[i], env.Options{Prefix: EnvPrefix}); err != nil {
			ee = append(ee, err)
		}
	}
	if len(ee) > 0 {
		return errors.Join(ee...)
	}
	return nil
}
