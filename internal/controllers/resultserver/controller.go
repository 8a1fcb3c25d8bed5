// Package resultserver exposes the result sink as a read-only REST API: the
// flat tabular view of TSLA rows, for downstream analysis tooling.
package resultserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/glaciersat/snowline/internal/database"
	"github.com/glaciersat/snowline/internal/types"
)

// Controller represents the result REST server controller
type Controller struct {
	ctx    context.Context
	wg     *sync.WaitGroup
	config *types.Config
	rsc    types.ResultServerConfig
	Server http.Server
	DB     *gorm.DB
	logger *zap.SugaredLogger
}

// NewController creates a new result REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, c *types.Config, rsc types.ResultServerConfig, logger *zap.SugaredLogger) (*Controller, error) {
	if rsc.Port == 0 {
		return nil, fmt.Errorf("result server: port must be configured")
	}
	if c.Storage.TimescaleDB.ConnectionString == "" {
		return nil, fmt.Errorf("result server requires a TimescaleDB result sink")
	}

	db, err := database.CreateConnection(c.Storage.TimescaleDB.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("result server could not connect to result database: %w", err)
	}

	ctrl := &Controller{
		ctx:    ctx,
		wg:     wg,
		config: c,
		rsc:    rsc,
		DB:     db,
		logger: logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/results", ctrl.handleResults).Methods(http.MethodGet)
	router.HandleFunc("/api/results/{rgiid}", ctrl.handleResultsForGlacier).Methods(http.MethodGet)
	router.HandleFunc("/healthz", ctrl.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	ctrl.Server = http.Server{
		Addr:         fmt.Sprintf("%s:%d", rsc.ListenAddr, rsc.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return ctrl, nil
}

// StartController starts the HTTP listener and shuts it down on context
// cancellation
func (c *Controller) StartController() error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Infof("result server listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorf("result server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}
