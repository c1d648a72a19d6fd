// Package server exposes the lifecycle manager over a small HTTP admin
// API so shell scripts and dashboards can drive it without the CLI.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verlane/ollamactl/internal/metrics"
	"github.com/verlane/ollamactl/internal/service"
	"github.com/verlane/ollamactl/internal/store"
)

// Router provides embeddable HTTP handlers for the service lifecycle.
// Endpoints:
//
//	POST {basePath}/start
//	POST {basePath}/stop
//	GET  {basePath}/status
//	GET  {basePath}/history    query: limit=N (default 20)
//	GET  {basePath}/healthz
//	GET  {basePath}/metrics
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	mgr      *service.Manager
	st       store.Store
	basePath string
}

// NewRouter constructs a Router with configurable basePath. st may be
// nil; the history endpoint then reports 404.
func NewRouter(mgr *service.Manager, st store.Store, basePath string) *Router {
	return &Router{mgr: mgr, st: st, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.GET("/status", r.handleStatus)
	group.GET("/history", r.handleHistory)
	group.GET("/healthz", r.handleHealthz)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Callers shut it down via the returned http.Server.
func NewServer(addr, basePath string, mgr *service.Manager, st store.Store) *http.Server {
	r := NewRouter(mgr, st, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type okResp struct {
	OK     bool           `json:"ok"`
	Status service.Status `json:"status"`
}

func (r *Router) handleStart(c *gin.Context) {
	if err := r.mgr.StartService(c.Request.Context()); err != nil {
		writeJSON(c, http.StatusBadGateway, errorResp{Error: err.Error(), Code: errorCode(err)})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true, Status: r.mgr.Status(c.Request.Context())})
}

func (r *Router) handleStop(c *gin.Context) {
	if err := r.mgr.StopService(c.Request.Context()); err != nil {
		writeJSON(c, http.StatusBadGateway, errorResp{Error: err.Error(), Code: errorCode(err)})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true, Status: r.mgr.Status(c.Request.Context())})
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.mgr.Status(c.Request.Context()))
}

func (r *Router) handleHistory(c *gin.Context) {
	if r.st == nil {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "no transition store configured"})
		return
	}
	limit := 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	recs, err := r.st.Recent(c.Request.Context(), limit)
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, recs)
}

// handleHealthz reports the probe result directly: 200 when the managed
// service answers, 503 otherwise.
func (r *Router) handleHealthz(c *gin.Context) {
	if r.mgr.CheckHealth(c.Request.Context()) {
		writeJSON(c, http.StatusOK, gin.H{"healthy": true})
		return
	}
	writeJSON(c, http.StatusServiceUnavailable, gin.H{"healthy": false})
}

func errorCode(err error) string {
	if coded, ok := err.(interface{ Code() service.ErrorCode }); ok {
		return string(coded.Code())
	}
	return ""
}
