// Package httpapi exposes the read-only HTTP surface: health, status,
// trade history, the PnL chart and Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quotebot/internal/logger"
	"quotebot/internal/metrics"
	"quotebot/internal/pkg/circuit"
	"quotebot/internal/store/tradelog"
	"quotebot/internal/trader"
)

const defaultTradesLimit = 50

// GatewayStats mirrors the exchange client's request counters.
type GatewayStats struct {
	Requests  int64  `json:"requests"`
	Errors    int64  `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

// ServerConfig describes the observers the server reads from. Trades and
// Metrics are optional; their routes are omitted when nil.
type ServerConfig struct {
	Addr         string
	Symbol       string
	State        *trader.EngineState
	BreakerState func() circuit.State
	Stats        func() GatewayStats
	Trades       *tradelog.Store
	Metrics      *metrics.Set
}

type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.State == nil {
		return nil, errors.New("http server requires engine state")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9985"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/status", statusHandler(cfg))
	if cfg.Trades != nil {
		api.GET("/trades", tradesHandler(cfg.Trades))
		router.GET("/chart", chartHandler(cfg.Symbol, cfg.Trades))
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return &Server{addr: cfg.Addr, router: router}, nil
}

func statusHandler(cfg ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := cfg.State.Snapshot()
		resp := gin.H{
			"symbol":   cfg.Symbol,
			"position": snap.Position,
			"stats":    snap.Stats,
			"last":     snap.Last,
			"uptime":   time.Since(snap.Started).Round(time.Second).String(),
		}
		if cfg.BreakerState != nil {
			resp["breaker"] = cfg.BreakerState().String()
		}
		if cfg.Stats != nil {
			resp["gateway"] = cfg.Stats()
		}
		c.JSON(http.StatusOK, resp)
	}
}

func tradesHandler(store *tradelog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultTradesLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}
		rows, err := store.Recent(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"trades": rows, "count": len(rows)})
	}
}

func chartHandler(symbol string, store *tradelog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := store.PnLSeries()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := renderPnLChart(c.Writer, symbol, rows); err != nil {
			logger.Errorf("chart render failed: %v", err)
		}
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		c.Next()
		logger.Debugf("HTTP %s %s status=%d dur=%s", method, path, c.Writer.Status(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
