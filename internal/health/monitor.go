// ABOUTME: Periodic health monitor for a provider with rolling uptime history
// ABOUTME: Classifies healthy/degraded/unavailable by consecutive failures
package health

import (
	"context"
	"sync"
	"time"

	"github.com/mbrook/engram/internal/provider"
)

// Status is the monitor's classification of a provider.
type Status string

const (
	StatusHealthy     Status = "healthy"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

const (
	// DefaultFailureThreshold is how many consecutive failures mark a
	// provider unavailable.
	DefaultFailureThreshold = 3
	// DefaultHistorySize bounds the trailing window used for uptime.
	DefaultHistorySize = 20
)

// MonitorStatus is a snapshot of the monitor's view of a provider.
type MonitorStatus struct {
	ProviderName        string    `json:"provider_name"`
	Status              Status    `json:"status"`
	LastCheck           time.Time `json:"last_check"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	UptimePercent       float64   `json:"uptime_percent"`
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	FailureThreshold int
	HistorySize      int
	// OnStatusChange fires only on an actual transition, never on a
	// repeated identical status.
	OnStatusChange func(from, to Status)
}

// Monitor wraps one provider and periodically polls its health. The periodic
// timer and on-demand checks never run two probes concurrently.
type Monitor struct {
	opts MonitorOptions

	mu                  sync.Mutex
	prov                provider.Provider
	history             []bool // pass/fail results, oldest first
	consecutiveFailures int
	lastCheck           time.Time
	status              Status
	monitoring          bool
	stop                chan struct{}
	done                chan struct{}

	checkMu sync.Mutex // serializes individual health probes
}

// NewMonitor creates a monitor with the given options. Zero values get
// defaults.
func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	return &Monitor{opts: opts, status: StatusHealthy}
}

// Start begins monitoring a provider: one immediate check, then one every
// interval. Starting for a new provider implicitly stops any prior session.
func (m *Monitor) Start(p provider.Provider, interval time.Duration) {
	m.Stop()

	m.mu.Lock()
	m.prov = p
	m.monitoring = true
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stop = stop
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		m.runCheck()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.runCheck()
			}
		}
	}()
}

// Stop halts periodic checks and waits for any in-flight check to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.monitoring {
		m.mu.Unlock()
		return
	}
	m.monitoring = false
	stop := m.stop
	done := m.done
	m.mu.Unlock()

	close(stop)
	<-done
}

// IsMonitoring reports whether a periodic session is active.
func (m *Monitor) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}

// CheckNow performs an out-of-band check without disturbing the periodic
// schedule and returns the resulting status.
func (m *Monitor) CheckNow() MonitorStatus {
	m.runCheck()
	return m.Status()
}

// Status returns the current snapshot.
func (m *Monitor) Status() MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := ""
	if m.prov != nil {
		name = m.prov.Name()
	}
	return MonitorStatus{
		ProviderName:        name,
		Status:              m.status,
		LastCheck:           m.lastCheck,
		ConsecutiveFailures: m.consecutiveFailures,
		UptimePercent:       m.uptimeLocked(),
	}
}

// Reset clears history and failure count, restoring healthy at 100% uptime.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	m.consecutiveFailures = 0
	m.status = StatusHealthy
}

// runCheck probes the provider once and folds the result into the rolling
// state. Probes are serialized so a slow check and a periodic tick never
// overlap.
func (m *Monitor) runCheck() {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	m.mu.Lock()
	p := m.prov
	m.mu.Unlock()
	if p == nil {
		return
	}

	h := p.HealthCheck(context.Background())
	m.record(h.Available)
}

// record folds one pass/fail result into history and fires the transition
// callback when the classification changes.
func (m *Monitor) record(success bool) {
	m.mu.Lock()

	m.lastCheck = time.Now()
	m.history = append(m.history, success)
	if len(m.history) > m.opts.HistorySize {
		m.history = m.history[len(m.history)-m.opts.HistorySize:]
	}

	if success {
		m.consecutiveFailures = 0
	} else {
		m.consecutiveFailures++
	}

	from := m.status
	to := m.classifyLocked()
	m.status = to
	callback := m.opts.OnStatusChange
	m.mu.Unlock()

	if callback != nil && from != to {
		callback(from, to)
	}
}

// classifyLocked maps the consecutive failure count onto a status.
func (m *Monitor) classifyLocked() Status {
	switch {
	case m.consecutiveFailures == 0:
		return StatusHealthy
	case m.consecutiveFailures < m.opts.FailureThreshold:
		return StatusDegraded
	default:
		return StatusUnavailable
	}
}

// uptimeLocked computes the success percentage over the trailing window.
// An empty history reports 100.
func (m *Monitor) uptimeLocked() float64 {
	if len(m.history) == 0 {
		return 100
	}
	successes := 0
	for _, ok := range m.history {
		if ok {
			successes++
		}
	}
	return float64(successes) / float64(len(m.history)) * 100
}
