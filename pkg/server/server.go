// Package server exposes the driver's configuration-lifecycle API over HTTP,
// one session per managed device.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/netconfd/panos-driver/pkg/config"
	"github.com/netconfd/panos-driver/pkg/driver"
	"github.com/netconfd/panos-driver/pkg/driver/types"
)

// ConfigDriver is the slice of the device driver the server drives. It
// matches *driver.Driver.
type ConfigDriver interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	IsAlive() bool
	GetConfig(ctx context.Context, scope string) (*driver.Configs, error)
	LoadReplaceCandidate(ctx context.Context, filename string) error
	LoadMergeCandidate(ctx context.Context, filename, content string) error
	CompareConfig(ctx context.Context) (string, error)
	CommitConfig(ctx context.Context, message string) error
	DiscardConfig(ctx context.Context) error
	Rollback(ctx context.Context) error

	GetFacts(ctx context.Context) (*types.Facts, error)
	GetInterfaces(ctx context.Context) (map[string]types.Interface, error)
	GetInterfacesIP(ctx context.Context) (map[string]types.InterfaceIP, error)
	GetLLDPNeighbors(ctx context.Context) (map[string][]types.LLDPNeighbor, error)
	GetRouteTo(ctx context.Context, destination, protocol string) (map[string][]types.Route, error)
}

type Server struct {
	config *config.Config

	cfn context.CancelFunc

	md      *sync.RWMutex
	drivers map[string]ConfigDriver // open sessions, keyed by device name

	newDriver func(cfg *config.DeviceConfig) ConfigDriver

	router  *mux.Router
	reg     *prometheus.Registry
	metrics *opMetrics
}

func NewServer(c *config.Config) *Server {
	s := &Server{
		config: c,

		md:      &sync.RWMutex{},
		drivers: make(map[string]ConfigDriver),

		newDriver: func(cfg *config.DeviceConfig) ConfigDriver {
			return driver.New(cfg)
		},

		router: mux.NewRouter(),
		reg:    prometheus.NewRegistry(),
	}
	s.reg.MustRegister(collectors.NewGoCollector())
	s.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.metrics = newOpMetrics(s.reg)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/devices/{device}/session", s.handleOpen).Methods(http.MethodPost)
	s.router.HandleFunc("/devices/{device}/session", s.handleClose).Methods(http.MethodDelete)
	s.router.HandleFunc("/devices/{device}/alive", s.handleAlive).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/config", s.handleGetConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/config/replace", s.handleReplace).Methods(http.MethodPost)
	s.router.HandleFunc("/devices/{device}/config/merge", s.handleMerge).Methods(http.MethodPost)
	s.router.HandleFunc("/devices/{device}/config/diff", s.handleDiff).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/config/commit", s.handleCommit).Methods(http.MethodPost)
	s.router.HandleFunc("/devices/{device}/config/discard", s.handleDiscard).Methods(http.MethodPost)
	s.router.HandleFunc("/devices/{device}/config/rollback", s.handleRollback).Methods(http.MethodPost)
	s.router.HandleFunc("/devices/{device}/state/facts", s.handleFacts).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/state/interfaces", s.handleInterfaces).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/state/interfaces/ip", s.handleInterfacesIP).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/state/lldp", s.handleLLDPNeighbors).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/{device}/state/routes", s.handleRouteTo).Methods(http.MethodGet)

	if s.config.Prometheus != nil && s.config.Prometheus.Address == "" {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}
}

// Serve runs the HTTP API and, when configured on its own address, the
// metrics endpoint, until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ctx, s.cfn = context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	apiSrv := &http.Server{
		Addr:    s.config.HTTPServer.Address,
		Handler: s.router,
	}
	g.Go(func() error {
		log.Infof("running server on %s", s.config.HTTPServer.Address)
		if s.config.HTTPServer.TLS != nil {
			tlsCfg, err := s.config.HTTPServer.TLS.NewConfig(ctx)
			if err != nil {
				return err
			}
			apiSrv.TLSConfig = tlsCfg
			return apiSrv.ListenAndServeTLS("", "")
		}
		return apiSrv.ListenAndServe()
	})

	if s.config.Prometheus != nil && s.config.Prometheus.Address != "" {
		promMux := http.NewServeMux()
		promMux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
		promSrv := &http.Server{
			Addr:    s.config.Prometheus.Address,
			Handler: promMux,
		}
		g.Go(func() error {
			log.Infof("running metrics server on %s", s.config.Prometheus.Address)
			return promSrv.ListenAndServe()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return promSrv.Shutdown(shutCtx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiSrv.Shutdown(shutCtx)
	})
	return g.Wait()
}

// Stop shuts the server down and closes every open device session.
func (s *Server) Stop() {
	if s.cfn != nil {
		s.cfn()
	}
	s.md.Lock()
	defer s.md.Unlock()
	for name, d := range s.drivers {
		if err := d.Close(context.Background()); err != nil {
			log.Errorf("failed to close session to %s: %v", name, err)
		}
		delete(s.drivers, name)
	}
}

func (s *Server) deviceConfig(name string) *config.DeviceConfig {
	for _, d := range s.config.Devices {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (s *Server) driverFor(name string) (ConfigDriver, bool) {
	s.md.RLock()
	defer s.md.RUnlock()
	d, ok := s.drivers[name]
	return d, ok
}
