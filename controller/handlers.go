package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gwos/tdt/config"
	"github.com/gwos/tdt/logzer"
	"github.com/gwos/tdt/report"
	"github.com/gwos/tdt/sdk/instant"
	"github.com/gwos/tdt/sdk/tdt"
)

var errInvalidParam = errors.New("invalid parameter")

type ticksDTO struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Unit       tdt.Unit  `json:"unit"`
	Ticks      float64   `json:"ticks"`
	WholeTicks int64     `json:"wholeTicks"`
}

type breakdownDTO struct {
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
	Breakdown tdt.CalendarBreakdown `json:"breakdown"`
}

type breakdownAllDTO struct {
	Start     time.Time               `json:"start"`
	End       time.Time               `json:"end"`
	All       tdt.MultiScaleBreakdown `json:"all"`
	Saturated bool                    `json:"saturated,omitempty"`
}

type statsDTO struct {
	config.BuildInfo
	LastErrors []logzer.LogRecord `json:"lastErrors"`
}

type prettyDTO struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Pretty string    `json:"pretty"`
}

// @Description Counts ticks between start and end in the unit.
// @Produce json
// @Param   start  query  string  false  "RFC3339, date, epoch, now, or an integer as epoch milliseconds (1997 is 1970-01-01T00:00:01.997Z, not a year)"
// @Param   end    query  string  false  "as start, now if omitted"
// @Param   unit   query  string  false  "years|months|days|hours|minutes|seconds|milliseconds|microseconds|nanoseconds"
// @Router  /ticks [get]
func (controller *Controller) ticks(c *gin.Context) {
	span, err := controller.span(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	unit, err := controller.unit(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	ticks, err := span.Ticks(unit)
	if err != nil {
		controller.abort(c, err)
		return
	}
	whole, _ := span.WholeTicks(unit)
	c.JSON(http.StatusOK, ticksDTO{span.Start, span.End, unit, ticks, whole})
}

// @Description Splits elapsed time into calendar years, months, days, hours, minutes, seconds.
// @Produce json
// @Router  /breakdown [get]
func (controller *Controller) breakdown(c *gin.Context) {
	span, err := controller.span(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdownDTO{span.Start, span.End, span.Breakdown()})
}

// @Description Counts elapsed time at every scale from millennia to nanoseconds.
// @Produce json
// @Router  /breakdown/all [get]
func (controller *Controller) breakdownAll(c *gin.Context) {
	span, err := controller.span(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	all := span.BreakdownAll()
	c.JSON(http.StatusOK, breakdownAllDTO{span.Start, span.End, all, all.Saturated()})
}

// @Description Renders elapsed time as "2 years, 3 months, 1 day".
// @Produce json
// @Param   maxUnits  query  int  false  "units to keep, 0 keeps all"
// @Router  /pretty [get]
func (controller *Controller) pretty(c *gin.Context) {
	span, err := controller.span(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	maxUnits, err := controller.maxUnits(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, prettyDTO{span.Start, span.End, span.Pretty(maxUnits)})
}

// @Description Renders all sections at once.
// @Produce json,plain
// @Param   format    query  string  false  "text|json"
// @Param   sections  query  string  false  "comma separated: ticks,breakdown,all,pretty"
// @Router  /report [get]
func (controller *Controller) renderReport(c *gin.Context) {
	span, err := controller.span(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	unit, err := controller.unit(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	maxUnits, err := controller.maxUnits(c)
	if err != nil {
		controller.abort(c, err)
		return
	}
	format := c.DefaultQuery("format", controller.report.Format)
	sections := controller.report.Sections
	if s := c.Query("sections"); s != "" {
		sections = strings.Split(s, ",")
	}

	contentType := "text/plain; charset=utf-8"
	switch format {
	case config.FormatText:
	case config.FormatJSON:
		contentType = gin.MIMEJSON
	default:
		controller.abort(c, fmt.Errorf("%w: format: %q", errInvalidParam, format))
		return
	}
	r, err := report.Build(span, unit, maxUnits, sections...)
	if err != nil {
		controller.abort(c, err)
		return
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, format); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (controller *Controller) version(c *gin.Context) {
	c.JSON(http.StatusOK, config.GetBuildInfo())
}

// @Description Returns build info and the last logged errors.
// @Produce json
// @Router  /stats [get]
func (controller *Controller) stats(c *gin.Context) {
	c.JSON(http.StatusOK, statsDTO{config.GetBuildInfo(), logzer.LastErrors()})
}

// span resolves start and end query params, omitted ones get the engine defaults
func (controller *Controller) span(c *gin.Context) (tdt.Span, error) {
	start, err := instant.ParseWithClock(c.Query("start"), controller.clock())
	if err != nil {
		return tdt.Span{}, fmt.Errorf("start: %w", err)
	}
	end, err := instant.ParseWithClock(c.Query("end"), controller.clock())
	if err != nil {
		return tdt.Span{}, fmt.Errorf("end: %w", err)
	}
	return controller.engine.Span(start.Time, end.Time), nil
}

func (controller *Controller) unit(c *gin.Context) (tdt.Unit, error) {
	s := c.Query("unit")
	if s == "" {
		return controller.engine.Unit, nil
	}
	return tdt.ParseUnit(s)
}

// maxUnits passes explicit values as is, so 0 keeps all units
func (controller *Controller) maxUnits(c *gin.Context) (int, error) {
	s := c.Query("maxUnits")
	if s == "" {
		return controller.engine.MaxUnits, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: maxUnits: %q", errInvalidParam, s)
	}
	return n, nil
}

func (controller *Controller) abort(c *gin.Context, err error) {
	if errors.Is(err, tdt.ErrUnsupportedUnit) {
		controller.unsupported.Inc()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
