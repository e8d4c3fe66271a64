package controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gwos/tdt/config"
	_ "github.com/gwos/tdt/docs"
	"github.com/gwos/tdt/sdk/tdt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controller serves the engine operations over HTTP
type Controller struct {
	engine *tdt.Engine
	ctrl   config.Controller
	report config.Report

	mu      sync.Mutex
	srv     *http.Server
	addr    string
	handler http.Handler

	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	unsupported prometheus.Counter

	requestIDs *requestIDs
}

// New returns controller with registered routes
func New(cfg *config.Config, engine *tdt.Engine) *Controller {
	controller := &Controller{
		engine:   engine,
		ctrl:     cfg.Controller,
		report:   cfg.Report,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tdt_requests_total",
				Help: "Count of API requests by operation and status code",
			},
			[]string{"operation", "code"},
		),
		unsupported: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tdt_unsupported_unit_total",
				Help: "Count of requests rejected with unsupported unit",
			},
		),
		requestIDs: newRequestIDs(),
	}
	controller.registry.MustRegister(
		controller.requests,
		controller.unsupported,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	controller.handler = controller.router()
	return controller
}

// Handler returns the router
func (controller *Controller) Handler() http.Handler {
	return controller.handler
}

func (controller *Controller) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	corsConfig.ExposeHeaders = []string{headerRequestID}
	router.Use(cors.New(corsConfig))
	router.Use(controller.requestID, controller.logRequest, controller.countRequest, controller.traceRequest)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(controller.registry, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1Group := router.Group("/api/v1")
	apiV1Group.GET("/version", controller.version)
	apiV1Group.GET("/stats", controller.stats)

	spanGroup := apiV1Group.Group("")
	spanGroup.Use(controller.memoize)
	spanGroup.GET("/ticks", controller.ticks)
	spanGroup.GET("/breakdown", controller.breakdown)
	spanGroup.GET("/breakdown/all", controller.breakdownAll)
	spanGroup.GET("/pretty", controller.pretty)
	spanGroup.GET("/report", controller.renderReport)
	return router
}

// Start listens in background and waits up to StartTimeout for accepting connections,
// an error returns if the address is unavailable
func (controller *Controller) Start() error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.srv != nil {
		log.Warn().Msg("controller already started")
		return nil
	}

	ln, err := net.Listen("tcp", controller.ctrl.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         controller.ctrl.Addr,
		Handler:      controller.handler,
		ReadTimeout:  controller.ctrl.ReadTimeout,
		WriteTimeout: controller.ctrl.WriteTimeout,
	}
	serveErr := make(chan error, 1)

	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("controller: start listen")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("controller: serve error")
			serveErr <- err
		}
		log.Info().Msg("controller: stopped")
	}()

	if err := waitReady(ln.Addr().String(), controller.ctrl.StartTimeout, serveErr); err != nil {
		_ = srv.Close()
		_ = ln.Close()
		return err
	}
	controller.srv = srv
	controller.addr = ln.Addr().String()
	return nil
}

// waitReady dials addr until it accepts or timeout passes, zero timeout skips the check
func waitReady(addr string, timeout time.Duration, serveErr <-chan error) error {
	if timeout <= 0 {
		return nil
	}
	deadline := time.Now().Add(timeout)
	for {
		select {
		case err := <-serveErr:
			return err
		default:
		}
		conn, err := net.DialTimeout("tcp", addr, time.Until(deadline))
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("controller: not ready in %v: %w", timeout, err)
		}
		time.Sleep(time.Millisecond * 10)
	}
}

// Stop gracefully shutdowns the server, ctx without deadline gets StopTimeout
func (controller *Controller) Stop(ctx context.Context) error {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.srv == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && controller.ctrl.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, controller.ctrl.StopTimeout)
		defer cancel()
	}

	log.Info().Msg("controller: shutdown ...")
	err := controller.srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Msg("controller: shutdown error")
	}
	controller.srv = nil
	return err
}

// Addr returns the listening address of started controller
func (controller *Controller) Addr() string {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.addr
}

func (controller *Controller) clock() tdt.Clock {
	if controller.engine.Clock == nil {
		return tdt.RealClock{}
	}
	return controller.engine.Clock
}
