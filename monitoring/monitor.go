// Package monitoring serves the state of a running simulation over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"

	"github.com/sarchlab/keepaway/monitoring/web"
	"github.com/sarchlab/keepaway/sim"
)

// Monitor is a hook that publishes a copy of the simulation state after each
// round and an HTTP server that serves the latest copy. Handlers never touch
// the live registry.
type Monitor struct {
	portNumber int
	logger     *zap.Logger
	metrics    *metrics

	server   *http.Server
	listener net.Listener

	snapshotLock sync.RWMutex
	snapshot     sim.Snapshot
	roundStart   time.Time

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	roundBar         *ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		logger:  zap.NewNop(),
		metrics: newMetrics(),
	}
}

// WithPortNumber sets the port number of the monitor. Zero picks a random
// port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber > 0 && portNumber < 1000 {
		m.logger.Warn("port number not allowed, using a random port",
			zap.Int("port", portNumber))

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger

	return m
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars

	if m.roundBar == pb {
		m.roundBar = nil
	}
}

// TrackRounds creates a progress bar that advances after every round.
func (m *Monitor) TrackRounds(total int) *ProgressBar {
	bar := m.CreateProgressBar("Rounds", uint64(total))

	m.progressBarsLock.Lock()
	m.roundBar = bar
	m.progressBarsLock.Unlock()

	return bar
}

// Publish stores a copy of the scheduler state for the handlers to serve.
func (m *Monitor) Publish(s *sim.Scheduler) {
	snap := s.Snapshot()

	m.snapshotLock.Lock()
	prev := m.snapshot
	m.snapshot = snap
	m.snapshotLock.Unlock()

	m.updateMetrics(prev, snap)
}

func (m *Monitor) updateMetrics(prev, snap sim.Snapshot) {
	for i, a := range snap.Agents {
		label := strconv.Itoa(int(a.ID))

		delta := a.Inspections
		if i < len(prev.Agents) {
			delta -= prev.Agents[i].Inspections
		}

		m.metrics.inspections.WithLabelValues(label).Add(float64(delta))
		m.metrics.itemsHeld.WithLabelValues(label).Set(float64(len(a.Items)))
	}
}

// Func publishes the state after every round.
func (m *Monitor) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosBeforeRound:
		m.roundStart = time.Now()

		if bar := m.currentRoundBar(); bar != nil {
			bar.IncrementInProgress(1)
		}
	case sim.HookPosAfterRound:
		m.Publish(ctx.Domain.(*sim.Scheduler))

		m.metrics.roundsCompleted.Inc()
		if !m.roundStart.IsZero() {
			m.metrics.roundDuration.Observe(time.Since(m.roundStart).Seconds())
		}

		if bar := m.currentRoundBar(); bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}
}

func (m *Monitor) currentRoundBar() *ProgressBar {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	return m.roundBar
}

// Handler returns the router serving the monitor API.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/round", m.round)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/snapshot", m.getSnapshot)
	r.HandleFunc("/api/agents", m.listAgents)
	r.HandleFunc("/api/agent/{id}", m.agentDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(
		m.metrics.registry, promhttp.HandlerOpts{}))
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the address it
// listens on.
func (m *Monitor) StartServer() (string, error) {
	if m.server != nil {
		return "", errors.New("monitor server already started")
	}

	listener, err := net.Listen("tcp", "localhost:"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", err
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	addr := listener.Addr().String()
	m.logger.Info("monitoring simulation", zap.String("url", "http://"+addr))

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor server stopped", zap.Error(err))
		}
	}()

	return addr, nil
}

// URL returns the address of the running server, or an empty string.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	return "http://" + m.listener.Addr().String()
}

// OpenInBrowser opens the monitor page in the default browser.
func (m *Monitor) OpenInBrowser() error {
	url := m.URL()
	if url == "" {
		return errors.New("monitor server not started")
	}

	return browser.OpenURL(url)
}

// Close stops the server. It is a no-op if the server never started.
func (m *Monitor) Close() error {
	if m.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := m.server.Shutdown(ctx)
	m.server = nil
	m.listener = nil

	return err
}

func (m *Monitor) latest() sim.Snapshot {
	m.snapshotLock.RLock()
	defer m.snapshotLock.RUnlock()

	return m.snapshot
}

func (m *Monitor) round(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"round\":%d}", m.latest().Round)
}

func (m *Monitor) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.latest())
}

func (m *Monitor) listAgents(w http.ResponseWriter, _ *http.Request) {
	snap := m.latest()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snap)
	serializer.SetMaxDepth(3)

	w.Header().Set("Content-Type", "application/json")
	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) agentDetails(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid agent id "+idStr, http.StatusBadRequest)
		return
	}

	snap := m.latest()
	if id < 0 || id >= len(snap.Agents) {
		http.Error(w, "Agent not found", http.StatusNotFound)
		return
	}

	writeJSON(w, snap.Agents[id])
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	states := make([]progressBarState, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		states = append(states, b.state())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, states)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
